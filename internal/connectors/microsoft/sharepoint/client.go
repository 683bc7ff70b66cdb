// Package sharepoint implements the SiteDirectory port against the
// SharePoint Online tenant administration REST API.
package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/halcyonops/spoadmin/internal/connectors/microsoft"
	"github.com/halcyonops/spoadmin/internal/core/ports/driven"
)

// Ensure Client implements the port.
var _ driven.SiteDirectory = (*Client)(nil)

// Config holds the SharePoint admin client configuration.
type Config struct {
	// TenantHost is the tenant's host label, e.g. "contoso" for
	// contoso.sharepoint.com.
	TenantHost string
	// AdminBaseURL overrides the derived admin centre URL. Used in tests.
	AdminBaseURL string
	// Tokens supplies bearer tokens for the admin resource.
	Tokens oauth2.TokenSource
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// RateLimit overrides the default SharePoint rate limit.
	RateLimit *microsoft.RateLimitConfig
}

// Client talks to the tenant administration API and to individual site
// collections with raw REST calls.
type Client struct {
	httpClient *http.Client
	adminBase  string
	tokens     oauth2.TokenSource
	limiter    *microsoft.RateLimiter
}

// New creates a SharePoint admin client.
func New(cfg Config) *Client {
	adminBase := cfg.AdminBaseURL
	if adminBase == "" {
		adminBase = fmt.Sprintf("https://%s-admin.sharepoint.com", cfg.TenantHost)
	}
	adminBase = strings.TrimRight(adminBase, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	limiter := microsoft.NewRateLimiter(microsoft.ServiceSharePoint)
	if cfg.RateLimit != nil {
		limiter = microsoft.NewRateLimiterWithConfig(*cfg.RateLimit)
	}

	return &Client{
		httpClient: httpClient,
		adminBase:  adminBase,
		tokens:     cfg.Tokens,
		limiter:    limiter,
	}
}

// doJSON issues a request, classifies the response status, and decodes the
// body into out when out is non-nil. Throttling responses are recorded with
// the rate limiter before being surfaced.
func (c *Client) doJSON(ctx context.Context, method, rawURL string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json;odata=nometadata")
	if body != nil {
		req.Header.Set("Content-Type", "application/json;odata=nometadata")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	if apiErr := microsoft.ResponseError(resp); apiErr != nil {
		if microsoft.IsRateLimited(apiErr) {
			c.limiter.RecordRateLimitError(microsoft.RetryAfterFromResponse(resp))
		}
		return fmt.Errorf("%s %s: status %d: %w", method, rawURL, resp.StatusCode, apiErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) adminURL(path string) string {
	return c.adminBase + path
}

func siteAPIURL(siteURL, path string) string {
	return strings.TrimRight(siteURL, "/") + path
}

// quoted escapes a string literal for an OData query parameter.
func quoted(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func escaped(s string) string {
	return url.QueryEscape(s)
}
