// Package driven defines the interfaces the core services require from
// the outside world: the tenant site directory, the group directory, and
// the report sink. Adapters under internal/connectors and internal/report
// implement them.
package driven

import (
	"context"

	"github.com/halcyonops/spoadmin/internal/core/domain"
)

// FeatureScope selects where a feature activation is checked.
type FeatureScope string

const (
	// ScopeSite checks the site-collection scope.
	ScopeSite FeatureScope = "site"
	// ScopeWeb checks the root web scope.
	ScopeWeb FeatureScope = "web"
)

// SiteDirectory is the tenant administration surface: enumeration, site
// metadata, administrator management, and group connection. Every call may
// fail with a rate-limit error carrying an optional retry-after duration.
type SiteDirectory interface {
	// ListSites enumerates site collections in the tenant. Personal
	// storage sites are included only when includePersonal is set.
	ListSites(ctx context.Context, includePersonal bool) ([]domain.Site, error)

	// GetSite fetches one site's metadata by URL.
	GetSite(ctx context.Context, siteURL string) (domain.Site, error)

	// SiteAdmins returns the site collection administrators of a site.
	SiteAdmins(ctx context.Context, siteURL string) ([]domain.Principal, error)

	// SetSiteAdmin grants (isAdmin true) or revokes (isAdmin false) the
	// site collection administrator role for a login name.
	SetSiteAdmin(ctx context.Context, siteURL, loginName string, isAdmin bool) error

	// SiteGroupMembers returns the members of a named SharePoint group on
	// the site. Primary resolution tier for owner-style groups.
	SiteGroupMembers(ctx context.Context, siteURL, groupName string) ([]domain.Principal, error)

	// SiteOwnersGroup returns the members of the site's associated owners
	// group. Used as the fallback resolution tier for owner-style groups.
	SiteOwnersGroup(ctx context.Context, siteURL string) ([]domain.Principal, error)

	// FeatureEnabled reports whether a feature is activated at the given
	// scope of the site.
	FeatureEnabled(ctx context.Context, siteURL string, scope FeatureScope, featureID string) (bool, error)

	// AliasAvailable reports whether a group alias is free in the tenant.
	AliasAvailable(ctx context.Context, alias string) (bool, error)

	// CreateGroupForSite connects the site to a new Microsoft 365 group
	// with the given display name and alias.
	CreateGroupForSite(ctx context.Context, siteURL, displayName, alias string, isPublic bool) error
}

// GroupDirectory resolves directory-backed group membership. Group IDs are
// the Entra object IDs extracted from federated directory claims.
type GroupDirectory interface {
	// GroupMembers returns the direct members of a group.
	GroupMembers(ctx context.Context, groupID string) ([]domain.Principal, error)

	// GroupOwners returns the owners of a group.
	GroupOwners(ctx context.Context, groupID string) ([]domain.Principal, error)
}

// SiteIterator produces the working set one site at a time, in enumeration
// order. It is finite and non-restartable.
type SiteIterator interface {
	// Next returns the next site, or ok=false when the set is exhausted.
	Next() (domain.Site, bool)

	// Skips returns results for input rows dropped during enumeration
	// (for example list rows missing a URL). Valid once Next has returned
	// ok=false.
	Skips() []domain.OperationResult
}

// ReportSink receives report rows in enumeration order. The concrete
// format (CSV, console) is the sink's concern.
type ReportSink interface {
	Write(row []string) error
	Close() error
}
