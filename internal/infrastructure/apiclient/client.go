// Package apiclient wraps calls to the Identifier Services registry API.
//
// Every call carries the caller's bearer token and a JSON content type.
// Do hands back the raw response whatever its status; Call classifies the
// response into decoded data or an *ErrorInfo.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"idservices-admin/pkg/httpclient"
)

const (
	// RequestIDHeader correlates console calls with API logs.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody   = 64 << 10
	maxSuccessBody = 8 << 20
)

// Request describes one call to the registry API.
type Request struct {
	URL    string // absolute, or relative to the client's base URL
	Method string // defaults to GET
	Body   any    // JSON-encoded when non-nil
	Token  string
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration // used only when HTTPClient is nil
}

// Client issues authenticated JSON requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. A nil HTTPClient gets a pooled client bounded by cfg.Timeout.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = httpclient.New(cfg.Timeout)
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: hc,
	}
}

// BaseURL returns the base the client resolves relative URLs against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveURL joins relative API paths with the base URL.
func (c *Client) ResolveURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if c.baseURL == "" {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return c.baseURL + u
}

// Do issues the request and returns the raw response. Non-2xx statuses are
// not errors here; the caller owns the response body.
func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	url := c.ResolveURL(r.URL)
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+r.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().
			Err(err).
			Str("request_id", requestID).
			Str("method", method).
			Str("url", url).
			Msg("API request failed")
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}

	log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("latency_ms", time.Since(start)).
		Msg("API request")

	return resp, nil
}

// Call issues the request and decodes a 2xx JSON body into dst (which may be
// nil). Failures come back as an *ErrorInfo (transport and decode failures
// as UnknownError, non-2xx responses via ErrorFromResponse) unless ctx was
// cancelled, in which case ctx.Err() is returned.
func (c *Client) Call(ctx context.Context, r Request, dst any) error {
	resp, err := c.Do(ctx, r)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return UnknownError()
	}
	defer resp.Body.Close()

	if !IsSuccess(resp.StatusCode) {
		return ErrorFromResponse(resp)
	}
	if err := DecodeJSON(resp, dst); err != nil {
		log.Debug().Err(err).Str("url", r.URL).Msg("API response decode failed")
		return UnknownError()
	}
	return nil
}

// IsSuccess reports whether status is in the 2xx class.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// DecodeJSON reads a success body into dst. A nil dst drains the body.
func DecodeJSON(resp *http.Response, dst any) error {
	if dst == nil {
		_, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxSuccessBody))
		return err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSuccessBody+1))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if len(body) > maxSuccessBody {
		return fmt.Errorf("response body exceeds %d bytes", maxSuccessBody)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
