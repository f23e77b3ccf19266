// Package logging configures the global logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options mirror the log section of the config file.
type Options struct {
	Level      string
	File       string // rotating run log file; empty disables the file sink
	MaxSizeMB  int
	MaxBackups int
}

// Setup configures the logrus standard logger to write to stderr and,
// when a file is configured, to a size-rotated log file as well.
func Setup(opts Options) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	out := io.Writer(os.Stderr)
	if opts.File != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		})
	}
	logrus.SetOutput(out)
}
