// Package entra implements the GroupDirectory port against the Microsoft
// Graph groups API.
package entra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/halcyonops/spoadmin/internal/connectors/microsoft"
	"github.com/halcyonops/spoadmin/internal/core/domain"
	"github.com/halcyonops/spoadmin/internal/core/ports/driven"
)

// Ensure Client implements the port.
var _ driven.GroupDirectory = (*Client)(nil)

const defaultBaseURL = "https://graph.microsoft.com/v1.0"

// Config holds the Graph client configuration.
type Config struct {
	// BaseURL overrides the Graph endpoint. Used in tests.
	BaseURL string
	// Tokens supplies bearer tokens for the Graph resource.
	Tokens oauth2.TokenSource
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
}

// Client resolves directory group membership through Microsoft Graph.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     oauth2.TokenSource
	limiter    *microsoft.RateLimiter
}

// New creates a Graph group directory client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     cfg.Tokens,
		limiter:    microsoft.NewRateLimiter(microsoft.ServiceGraph),
	}
}

// directoryObjectJSON mirrors Graph's directoryObject projection for users.
type directoryObjectJSON struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

type directoryObjectPage struct {
	Value    []directoryObjectJSON `json:"value"`
	NextLink string                `json:"@odata.nextLink"`
}

// GroupMembers returns the direct members of a group.
func (c *Client) GroupMembers(ctx context.Context, groupID string) ([]domain.Principal, error) {
	members, err := c.collect(ctx, fmt.Sprintf("%s/groups/%s/members?$select=id,displayName,mail,userPrincipalName", c.baseURL, groupID))
	if err != nil {
		return nil, fmt.Errorf("group %s members: %w", groupID, err)
	}
	return members, nil
}

// GroupOwners returns the owners of a group.
func (c *Client) GroupOwners(ctx context.Context, groupID string) ([]domain.Principal, error) {
	owners, err := c.collect(ctx, fmt.Sprintf("%s/groups/%s/owners?$select=id,displayName,mail,userPrincipalName", c.baseURL, groupID))
	if err != nil {
		return nil, fmt.Errorf("group %s owners: %w", groupID, err)
	}
	return owners, nil
}

// collect follows pagination links and converts each directory object.
func (c *Client) collect(ctx context.Context, reqURL string) ([]domain.Principal, error) {
	var principals []domain.Principal

	for reqURL != "" {
		var page directoryObjectPage
		if err := c.getJSON(ctx, reqURL, &page); err != nil {
			return nil, err
		}
		for _, obj := range page.Value {
			login := obj.UserPrincipalName
			if login == "" {
				login = obj.ID
			}
			principals = append(principals, domain.Principal{
				Kind:        domain.KindUser,
				DisplayName: obj.DisplayName,
				LoginName:   login,
				Email:       obj.Mail,
			})
		}
		reqURL = page.NextLink
	}

	return principals, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	if apiErr := microsoft.ResponseError(resp); apiErr != nil {
		if microsoft.IsRateLimited(apiErr) {
			c.limiter.RecordRateLimitError(microsoft.RetryAfterFromResponse(resp))
		}
		return fmt.Errorf("GET %s: status %d: %w", reqURL, resp.StatusCode, apiErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
