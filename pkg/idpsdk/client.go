// Package idpsdk is a thin HTTP client for the upstream identity provider.
// It speaks the provider's wire protocol and classifies failures, nothing
// more; retry policy lives with the caller.
package idpsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client talks to the identity provider's REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests and
// for callers that need custom transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAPIKey sets the service credential sent on provider calls that are not
// authenticated by the subject's own secrets.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// New creates a client for the provider at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VerifyCredentials checks an email/password pair with the provider. On
// success it returns the subject record. Wrong credentials come back as a
// *ProviderError with code invalid_credentials; transport failures come back
// wrapped and satisfy IsNetwork.
func (c *Client) VerifyCredentials(ctx context.Context, email, password string) (Subject, error) {
	var out verifyResponse
	err := c.do(ctx, http.MethodPost, "/v1/credentials/verify",
		verifyRequest{Email: email, Password: password}, &out)
	if err != nil {
		return Subject{}, err
	}
	return out.Subject, nil
}

// GetSubjectByID fetches the provider's current record for a subject. Used to
// revalidate a session against the provider's live state before sensitive
// operations, for example handing out a two-factor secret. Requires the
// client to carry a service API key.
func (c *Client) GetSubjectByID(ctx context.Context, id string) (Subject, error) {
	var out Subject
	if err := c.do(ctx, http.MethodGet, "/v1/subjects/"+id, nil, &out); err != nil {
		return Subject{}, err
	}
	return out, nil
}

// do performs one request/response cycle. A nil body sends no payload.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("idp: encode request: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("idp: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport-level failure: DNS, refused connection, timeout. The
		// provider never saw the request, so the caller may retry.
		return fmt.Errorf("idp: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("idp: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorResponse(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("idp: decode response: %w", err)
		}
	}
	return nil
}
