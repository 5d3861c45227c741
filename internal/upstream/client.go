// Package upstream performs the single outbound call each gateway route makes.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/worldinfo/backend/internal/domain"
)

// maxErrorBody bounds how much of a failed response is drained for reuse.
const maxErrorBody = 64 << 10

// Client issues JSON GET requests against one provider
type Client struct {
	provider   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a client whose every call is bounded by timeout
func NewClient(provider string, timeout time.Duration) *Client {
	return &Client{
		provider: provider,
		timeout:  timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetJSON fetches rawURL and decodes the body into out.
// Every failure is a *domain.UpstreamError carrying a stack trace.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return c.fail(domain.NetworkError, 0, redact(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(domain.NetworkError, 0, redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return c.fail(domain.UpstreamStatusError, resp.StatusCode, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return c.fail(domain.NetworkError, resp.StatusCode, ctx.Err())
		}
		return c.fail(domain.MalformedPayloadError, resp.StatusCode, err)
	}

	return nil
}

// Malformed reports a payload that decoded but lacks required data.
func (c *Client) Malformed(format string, args ...interface{}) error {
	return c.fail(domain.MalformedPayloadError, http.StatusOK, fmt.Errorf(format, args...))
}

func (c *Client) fail(kind domain.UpstreamErrorKind, status int, cause error) error {
	return errors.WithStack(&domain.UpstreamError{
		Kind:     kind,
		Provider: c.provider,
		Status:   status,
		Err:      cause,
	})
}

// redact strips the query string from transport errors; provider
// credentials travel as query parameters and must not reach the logs.
func redact(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}

	u, parseErr := url.Parse(urlErr.URL)
	if parseErr != nil {
		return urlErr.Err
	}
	u.RawQuery = ""

	return fmt.Errorf("%s %q: %w", urlErr.Op, u.String(), urlErr.Err)
}
