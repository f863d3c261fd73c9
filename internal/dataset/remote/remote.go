// Package remote fetches the transaction dataset as a JSON document over HTTP.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"txdash/internal/core"
	"txdash/internal/dataset"
)

// DefaultURL is the public dataset the dashboard was built against.
const DefaultURL = "https://s3.amazonaws.com/roxiler.com/product_transaction.json"

// ErrUnexpectedStatus is returned when the dataset host answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status from dataset host")

// HTTPClient allows injecting a custom client in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ dataset.Source = (*Source)(nil)

// Source performs one GET of the whole document per FetchAll.
type Source struct {
	url    string
	client HTTPClient
}

// New returns a Source for url whose requests are bounded by timeout.
// A non-positive timeout leaves only the caller's context as a bound.
func New(url string, timeout time.Duration) *Source {
	return NewWithClient(url, &http.Client{Timeout: timeout})
}

func NewWithClient(url string, client HTTPClient) *Source {
	if url == "" {
		url = DefaultURL
	}
	return &Source{url: url, client: client}
}

// URL returns the address the source reads from.
func (s *Source) URL() string { return s.url }

func (s *Source) FetchAll(ctx context.Context) ([]core.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	return dataset.Decode(resp.Body)
}
