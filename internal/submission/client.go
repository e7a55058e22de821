// Package submission sends completed applications to the downstream case
// management system as JSON envelopes.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-formflow/internal/httputil"
	"github.com/goliatone/go-formflow/pkg/formmodel"
)

var (
	ErrNoEndpoint = errors.New("submission: endpoint is required")
	// ErrRejected wraps 4xx answers; resubmitting the same payload will not help.
	ErrRejected = errors.New("submission: rejected")
)

// Receipt is the downstream acknowledgement.
type Receipt struct {
	Reference string `json:"reference"`
	Status    int    `json:"-"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithToken sends a bearer token with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithMaxRetries bounds retries on 429/503 answers.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// Client posts envelopes to one endpoint.
type Client struct {
	endpoint   string
	token      string
	http       *http.Client
	maxRetries int
}

// New builds a Client.
func New(endpoint string, options ...Option) *Client {
	c := &Client{endpoint: strings.TrimSpace(endpoint), http: http.DefaultClient}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Submit posts envelope. 2xx answers return the receipt; 4xx answers wrap
// ErrRejected; anything else is a transport failure worth retrying later.
func (c *Client) Submit(ctx context.Context, envelope formmodel.Envelope) (Receipt, error) {
	if c.endpoint == "" {
		return Receipt{}, ErrNoEndpoint
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return Receipt{}, fmt.Errorf("submission: encode envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("submission: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", envelope.ApplicationID.String())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries)
	if err != nil {
		return Receipt{}, fmt.Errorf("submission: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 && !httputil.Retryable(resp.StatusCode) {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Receipt{Status: resp.StatusCode}, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Receipt{Status: resp.StatusCode}, fmt.Errorf("submission: unexpected status %d", resp.StatusCode)
	}

	var receipt Receipt
	if resp.ContentLength != 0 {
		if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil && !errors.Is(err, io.EOF) {
			return Receipt{Status: resp.StatusCode}, fmt.Errorf("submission: decode receipt: %w", err)
		}
	}
	receipt.Status = resp.StatusCode
	return receipt, nil
}
