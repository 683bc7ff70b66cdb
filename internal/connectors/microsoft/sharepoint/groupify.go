package sharepoint

import (
	"context"
	"fmt"
	"net/http"

	"github.com/halcyonops/spoadmin/internal/connectors/microsoft"
	"github.com/halcyonops/spoadmin/internal/core/ports/driven"
)

// FeatureEnabled reports whether a feature is activated at the given scope
// of the site. The features endpoint returns 404 for features that are not
// activated, which maps to enabled=false rather than an error.
func (c *Client) FeatureEnabled(ctx context.Context, siteURL string, scope driven.FeatureScope, featureID string) (bool, error) {
	var scopePath string
	switch scope {
	case driven.ScopeSite:
		scopePath = "/_api/site"
	case driven.ScopeWeb:
		scopePath = "/_api/web"
	default:
		return false, fmt.Errorf("feature scope %q not recognised", scope)
	}

	reqURL := siteAPIURL(siteURL, scopePath+"/features/GetById(guid"+quoted(featureID)+")")

	var feature struct {
		DefinitionID string `json:"DefinitionId"`
	}
	err := c.doJSON(ctx, http.MethodGet, reqURL, nil, &feature)
	if err != nil {
		if microsoft.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("feature %s at %s scope: %w", featureID, scope, err)
	}
	return feature.DefinitionID != "", nil
}

// AliasAvailable reports whether a group alias is free in the tenant.
func (c *Client) AliasAvailable(ctx context.Context, alias string) (bool, error) {
	reqURL := c.adminURL("/_api/SP.Directory.DirectoryHelper/IsAliasUnique?alias=" + quoted(escaped(alias)))

	var result struct {
		Value bool `json:"value"`
	}
	if err := c.doJSON(ctx, http.MethodGet, reqURL, nil, &result); err != nil {
		return false, fmt.Errorf("alias check %q: %w", alias, err)
	}
	return result.Value, nil
}

// CreateGroupForSite connects a site to a new Microsoft 365 group.
func (c *Client) CreateGroupForSite(ctx context.Context, siteURL, displayName, alias string, isPublic bool) error {
	body := map[string]any{
		"siteUrl":     siteURL,
		"displayName": displayName,
		"alias":       alias,
		"isPublic":    isPublic,
		"optionalParams": map[string]any{
			"CreationOptions": []string{"SharePointKeepOldHomepage"},
		},
	}
	reqURL := c.adminURL("/_api/GroupSiteManager/CreateGroupForSite")
	if err := c.doJSON(ctx, http.MethodPost, reqURL, body, nil); err != nil {
		return fmt.Errorf("create group for %s: %w", siteURL, err)
	}
	return nil
}
