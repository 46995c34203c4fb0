package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Fetcher retrieves the raw markup stored at an address.
type Fetcher interface {
	Fetch(ctx context.Context, address string) ([]byte, error)
}

type StatusError struct {
	Address    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.Address, e.StatusCode)
}

const DefaultMaxBytes = 8 << 20

// HTTPFetcher fetches notes over HTTP relative to Base. A zero Timeout means
// a request may wait for as long as its context allows.
type HTTPFetcher struct {
	Base     *url.URL
	Client   *http.Client
	Timeout  time.Duration
	MaxBytes int64
}

func NewHTTPFetcher(base string, timeout time.Duration) (*HTTPFetcher, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &HTTPFetcher{Base: u, Client: http.DefaultClient, Timeout: timeout, MaxBytes: DefaultMaxBytes}, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, address string) ([]byte, error) {
	target, err := f.Base.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", address, err)
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Address: address, StatusCode: resp.StatusCode}
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", address, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("read %s: body exceeds %d bytes", address, limit)
	}
	return body, nil
}
