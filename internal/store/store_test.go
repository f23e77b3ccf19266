package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"KabuArchive/internal/model"
)

func testBar(date string, c float64, v int64) model.Bar {
	return model.Bar{Date: model.MustParseDay(date), Open: c - 1, High: c + 2, Low: c - 2, Close: c, Volume: v}
}

func TestLoadAbsent(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	series, ok, err := s.Load("7203")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, series)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	in := model.Series{
		testBar("2024-03-29", 3456.5, 1200300),
		testBar("2024-04-01", 3470, 980000),
	}
	require.NoError(t, s.Save("7203", in))

	out, ok, err := s.Load("7203")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in, out)
}

func TestSaveReplacesPriorContent(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save("7203", model.Series{testBar("2024-03-29", 100, 1)}))
	longer := model.Series{testBar("2024-03-29", 100, 1), testBar("2024-04-01", 101, 2)}
	require.NoError(t, s.Save("7203", longer))

	out, _, err := s.Load("7203")
	require.NoError(t, err)
	require.Equal(t, longer, out)
}

func TestSaveRejectsMalformedSeries(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	good := model.Series{testBar("2024-03-29", 100, 1)}
	require.NoError(t, s.Save("7203", good))
	before, err := os.ReadFile(s.Path("7203"))
	require.NoError(t, err)

	dup := model.Series{testBar("2024-03-29", 100, 1), testBar("2024-03-29", 101, 2)}
	err = s.Save("7203", dup)
	require.ErrorIs(t, err, ErrInvariant)

	// prior file must be byte-identical after the rejected save
	after, err := os.ReadFile(s.Path("7203"))
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save("7203", model.Series{testBar("2024-03-29", 100, 1)}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "7203.csv", entries[0].Name())
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "bars")
	_, err := New(dir)
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestLoadRejectsCorruptRows(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.Path("7203"),
		[]byte("Date,Open,High,Low,Close,Volume\nnot-a-date,1,2,3,4,5\n"), 0644))
	_, _, err = s.Load("7203")
	require.Error(t, err)

	require.NoError(t, os.WriteFile(s.Path("9984"),
		[]byte("Date,Open,High,Low,Close,Volume\n2024-01-04,1,2,3,4,not-a-volume\n"), 0644))
	_, _, err = s.Load("9984")
	require.Error(t, err)
}
