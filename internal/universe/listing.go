package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"KabuArchive/internal/model"
)

// ListingClient fetches the exchange's published instrument roster over
// HTTP. The endpoint is expected to serve CSV with a "code,name" header,
// one listed instrument per row.
type ListingClient struct {
	URL    string
	Client *http.Client
}

// NewListingClient creates a listing client with optional proxy support.
func NewListingClient(listingURL, proxyURL string) *ListingClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &ListingClient{
		URL: listingURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Fetch downloads and parses the roster. An unconfigured URL, an HTTP
// failure, or an empty roster all count as tier failure.
func (l *ListingClient) Fetch(ctx context.Context) ([]model.Instrument, error) {
	if l.URL == "" {
		return nil, fmt.Errorf("listing url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("listing: status %d, body: %s", resp.StatusCode, string(body))
	}

	r := csv.NewReader(resp.Body)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("listing decode: %w", err)
	}
	roster := parseRoster(records)
	if len(roster) == 0 {
		return nil, fmt.Errorf("listing returned no instruments")
	}
	return roster, nil
}
