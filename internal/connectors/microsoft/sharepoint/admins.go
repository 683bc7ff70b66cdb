package sharepoint

import (
	"context"
	"fmt"
	"net/http"

	"github.com/halcyonops/spoadmin/internal/core/domain"
)

// siteUserJSON mirrors the /_api/web/siteusers payload. PrincipalType is
// the SP.Utilities.PrincipalType flag: 1 user, 4 security group,
// 8 SharePoint group.
type siteUserJSON struct {
	Title         string `json:"Title"`
	LoginName     string `json:"LoginName"`
	Email         string `json:"Email"`
	PrincipalType int    `json:"PrincipalType"`
	IsSiteAdmin   bool   `json:"IsSiteAdmin"`
}

type siteUserPage struct {
	Value []siteUserJSON `json:"value"`
}

func (u siteUserJSON) toDomain() domain.Principal {
	return domain.ParsePrincipal(u.Title, u.LoginName, u.Email, principalTypeLabel(u.PrincipalType))
}

func principalTypeLabel(principalType int) string {
	switch principalType {
	case 1:
		return "User"
	case 4:
		return "SecurityGroup"
	case 8:
		return "SharePointGroup"
	default:
		return fmt.Sprintf("PrincipalType(%d)", principalType)
	}
}

// SiteAdmins returns the site collection administrators of a site. The
// administrator set is logically a set keyed by login name; the API may
// return entries in any order.
func (c *Client) SiteAdmins(ctx context.Context, siteURL string) ([]domain.Principal, error) {
	reqURL := siteAPIURL(siteURL, "/_api/web/siteusers?$filter=IsSiteAdmin%20eq%20true")

	var page siteUserPage
	if err := c.doJSON(ctx, http.MethodGet, reqURL, nil, &page); err != nil {
		return nil, fmt.Errorf("site admins %s: %w", siteURL, err)
	}

	admins := make([]domain.Principal, 0, len(page.Value))
	for _, raw := range page.Value {
		admins = append(admins, raw.toDomain())
	}
	return admins, nil
}

// SetSiteAdmin grants or revokes the site collection administrator role.
func (c *Client) SetSiteAdmin(ctx context.Context, siteURL, loginName string, isAdmin bool) error {
	body := map[string]any{
		"siteUrl":     siteURL,
		"loginName":   loginName,
		"isSiteAdmin": isAdmin,
	}
	reqURL := c.adminURL("/_api/SPO.Tenant/sites/SetSiteAdmin")
	if err := c.doJSON(ctx, http.MethodPost, reqURL, body, nil); err != nil {
		return fmt.Errorf("set site admin %s on %s: %w", loginName, siteURL, err)
	}
	return nil
}

// SiteGroupMembers returns the members of a named SharePoint group.
func (c *Client) SiteGroupMembers(ctx context.Context, siteURL, groupName string) ([]domain.Principal, error) {
	reqURL := siteAPIURL(siteURL, "/_api/web/sitegroups/GetByName("+quoted(escaped(groupName))+")/users")

	var page siteUserPage
	if err := c.doJSON(ctx, http.MethodGet, reqURL, nil, &page); err != nil {
		return nil, fmt.Errorf("site group %q on %s: %w", groupName, siteURL, err)
	}

	members := make([]domain.Principal, 0, len(page.Value))
	for _, raw := range page.Value {
		members = append(members, raw.toDomain())
	}
	return members, nil
}

// SiteOwnersGroup returns the members of the site's associated owners group.
func (c *Client) SiteOwnersGroup(ctx context.Context, siteURL string) ([]domain.Principal, error) {
	reqURL := siteAPIURL(siteURL, "/_api/web/associatedownergroup/users")

	var page siteUserPage
	if err := c.doJSON(ctx, http.MethodGet, reqURL, nil, &page); err != nil {
		return nil, fmt.Errorf("site owners group %s: %w", siteURL, err)
	}

	members := make([]domain.Principal, 0, len(page.Value))
	for _, raw := range page.Value {
		members = append(members, raw.toDomain())
	}
	return members, nil
}
