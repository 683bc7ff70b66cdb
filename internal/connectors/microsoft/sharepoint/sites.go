package sharepoint

import (
	"context"
	"fmt"
	"net/http"

	"github.com/halcyonops/spoadmin/internal/core/domain"
)

// sitePropertiesJSON mirrors the tenant API's site properties payload.
type sitePropertiesJSON struct {
	URL       string `json:"Url"`
	Title     string `json:"Title"`
	Template  string `json:"Template"`
	Status    string `json:"Status"`
	GroupID   string `json:"GroupId"`
	LockState string `json:"LockState"`
}

func (s sitePropertiesJSON) toDomain() domain.Site {
	return domain.Site{
		URL:       s.URL,
		Title:     s.Title,
		Template:  s.Template,
		Status:    s.Status,
		GroupID:   s.GroupID,
		LockState: s.LockState,
	}
}

type sitePropertiesPage struct {
	Value    []sitePropertiesJSON `json:"value"`
	NextLink string               `json:"@odata.nextLink"`
}

// ListSites enumerates the tenant's site collections, following pagination
// links until the directory is exhausted.
func (c *Client) ListSites(ctx context.Context, includePersonal bool) ([]domain.Site, error) {
	var sites []domain.Site

	next := c.adminURL(fmt.Sprintf(
		"/_api/SPO.Tenant/sites?includePersonalSites=%t", includePersonal))
	for next != "" {
		var page sitePropertiesPage
		if err := c.doJSON(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, fmt.Errorf("list sites: %w", err)
		}
		for _, raw := range page.Value {
			sites = append(sites, raw.toDomain())
		}
		next = page.NextLink
	}

	return sites, nil
}

// GetSite fetches one site's properties by URL.
func (c *Client) GetSite(ctx context.Context, siteURL string) (domain.Site, error) {
	reqURL := c.adminURL("/_api/SPO.Tenant/sites/GetByUrl?url=" + quoted(escaped(siteURL)))

	var raw sitePropertiesJSON
	if err := c.doJSON(ctx, http.MethodGet, reqURL, nil, &raw); err != nil {
		return domain.Site{}, fmt.Errorf("get site %s: %w", siteURL, err)
	}
	return raw.toDomain(), nil
}
