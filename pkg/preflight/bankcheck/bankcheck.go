// Package bankcheck is a preflight.Checker backed by an HTTP bank account
// verification service. The service answers with a status of VALID, INVALID
// or anything else for "could not tell"; the runner treats the latter, and
// every transport error, as a pass.
package bankcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-formflow/internal/httputil"
	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/preflight"
)

// Default answer names read from the answer set.
const (
	DefaultSortCodeField      = "bankSortCode"
	DefaultAccountNumberField = "bankAccountNumber"
)

// ErrNoEndpoint is returned when the client has no URL to call.
var ErrNoEndpoint = errors.New("bankcheck: endpoint is required")

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

// WithFields overrides the answer names carrying the sort code and account
// number.
func WithFields(sortCode, accountNumber string) Option {
	return func(c *Client) {
		if sortCode != "" {
			c.sortCodeField = sortCode
		}
		if accountNumber != "" {
			c.accountNumberField = accountNumber
		}
	}
}

// WithMaxRetries bounds retries on 429/503 answers.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// Client calls the verification endpoint.
type Client struct {
	endpoint           string
	http               *http.Client
	sortCodeField      string
	accountNumberField string
	maxRetries         int
}

var _ preflight.Checker = (*Client)(nil)

// New builds a Client for endpoint.
func New(endpoint string, options ...Option) *Client {
	c := &Client{
		endpoint:           strings.TrimSpace(endpoint),
		http:               http.DefaultClient,
		sortCodeField:      DefaultSortCodeField,
		accountNumberField: DefaultAccountNumberField,
		maxRetries:         1,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type request struct {
	SortCode      string `json:"sortCode"`
	AccountNumber string `json:"accountNumber"`
}

type response struct {
	Status     string         `json:"status"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Check posts the account details and maps the answer to a preflight.Result.
// Non-2xx answers are returned as errors.
func (c *Client) Check(ctx context.Context, data answers.Set) (preflight.Result, error) {
	if c.endpoint == "" {
		return preflight.Result{}, ErrNoEndpoint
	}

	body, err := json.Marshal(request{
		SortCode:      normaliseSortCode(data.String(c.sortCodeField)),
		AccountNumber: data.String(c.accountNumberField),
	})
	if err != nil {
		return preflight.Result{}, fmt.Errorf("bankcheck: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return preflight.Result{}, fmt.Errorf("bankcheck: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries)
	if err != nil {
		return preflight.Result{}, fmt.Errorf("bankcheck: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return preflight.Result{}, fmt.Errorf("bankcheck: unexpected status %d", resp.StatusCode)
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return preflight.Result{}, fmt.Errorf("bankcheck: decode response: %w", err)
	}
	return preflight.Result{
		Status:     preflight.Status(strings.ToUpper(strings.TrimSpace(decoded.Status))),
		Attributes: decoded.Attributes,
	}, nil
}

// normaliseSortCode drops the separators people type between digit pairs.
func normaliseSortCode(value string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(value)
}
