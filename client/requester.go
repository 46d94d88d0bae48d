package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPRequester is the net/http Requester.
type HTTPRequester struct {
	Client *http.Client
}

// NewHTTPRequester returns a requester using c, or http.DefaultClient when c is nil.
func NewHTTPRequester(c *http.Client) *HTTPRequester {
	if c == nil {
		c = http.DefaultClient
	}
	return &HTTPRequester{Client: c}
}

// Post implements Requester.
func (r *HTTPRequester) Post(ctx context.Context, url string, sub Submission) (int, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return 0, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sub.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", sub.IdempotencyKey)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return resp.StatusCode, nil
}
