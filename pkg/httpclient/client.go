package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultTimeout bounds outbound webhook calls
const DefaultTimeout = 10 * time.Second

// Client defines an interface for making HTTP requests.
// Tests substitute it to avoid real network calls.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewStandardClient creates an http.Client with the given timeout, DefaultTimeout when zero
func NewStandardClient(timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// PostJSON encodes payload and posts it to url
func PostJSON(ctx context.Context, client Client, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return client.Do(req)
}
