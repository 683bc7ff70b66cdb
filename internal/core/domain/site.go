package domain

import "strings"

// Site statuses as reported by the tenant administration API.
const (
	SiteStatusActive   = "Active"
	SiteStatusInactive = "Inactive"
)

// Site is a site collection within the tenant. The URL is the unique key;
// everything else is metadata the tenant API reports alongside it.
type Site struct {
	// URL is the absolute site collection URL.
	URL string
	// Title is the site title. May be empty for untitled sites.
	Title string
	// Template is the web template identifier, e.g. "STS#0" or "GROUP#0".
	Template string
	// Status is the provisioning status ("Active", "Inactive").
	Status string
	// GroupID is the connected Microsoft 365 group ID, or empty when the
	// site is not group-connected.
	GroupID string
	// LockState is the site lock state ("Unlock", "NoAccess", "ReadOnly").
	LockState string
}

// TitleUnknown is the sentinel carried for list rows that omit a title.
const TitleUnknown = "unknown"

// TemplateUnknown is the sentinel carried for list rows that omit a template.
const TemplateUnknown = "None"

// IsGroupConnected reports whether the site already has a Microsoft 365
// group attached. The API uses the zero GUID for unconnected sites.
func (s Site) IsGroupConnected() bool {
	return s.GroupID != "" && s.GroupID != "00000000-0000-0000-0000-000000000000"
}

// IsPersonalSite reports whether the URL points at a OneDrive personal
// storage site rather than a collaboration site.
func (s Site) IsPersonalSite() bool {
	lower := strings.ToLower(s.URL)
	return strings.Contains(lower, "-my.sharepoint.") || strings.Contains(lower, "/personal/")
}
