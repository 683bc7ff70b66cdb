package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/halcyonops/spoadmin/internal/connectors/microsoft"
	"github.com/halcyonops/spoadmin/internal/core/domain"
	"github.com/halcyonops/spoadmin/internal/core/ports/driven"
)

// ActionReportAdmins is the admin inventory action name.
const ActionReportAdmins = "report-admins"

// ReportHeader is the column layout of the admin inventory report.
var ReportHeader = []string{
	"Url", "Title", "Template", "Admins", "GroupOwners", "GroupMembers", "Notes",
}

// memberDelimiter joins consolidated principal entries within one field.
const memberDelimiter = "; "

// ReportService produces the administrator inventory: one consolidated row
// per site, with directory-backed groups expanded into owners and members.
type ReportService struct {
	dir    driven.SiteDirectory
	groups driven.GroupDirectory
	inv    *microsoft.Invoker
	log    zerolog.Logger
	// ignore holds directory group IDs excluded from expansion, lowercased.
	ignore map[string]struct{}
}

// NewReportService wires the report pipeline. ignoreGroups lists directory
// group IDs whose membership is too large to be worth resolving.
func NewReportService(
	dir driven.SiteDirectory,
	groups driven.GroupDirectory,
	inv *microsoft.Invoker,
	ignoreGroups []string,
	log zerolog.Logger,
) *ReportService {
	ignore := make(map[string]struct{}, len(ignoreGroups))
	for _, id := range ignoreGroups {
		ignore[strings.ToLower(strings.TrimSpace(id))] = struct{}{}
	}
	return &ReportService{dir: dir, groups: groups, inv: inv, log: log, ignore: ignore}
}

// Run processes the working set, writing one row per site to the sink.
func (s *ReportService) Run(ctx context.Context, sites driven.SiteIterator, sink driven.ReportSink) (*RunReport, error) {
	return runBatch(ctx, s.log, sites, func(ctx context.Context, site domain.Site) domain.OperationResult {
		return s.reportSite(ctx, site, sink)
	})
}

// siteEntry accumulates the consolidated fields for one site's row.
type siteEntry struct {
	admins  []string
	owners  []string
	members []string
	notes   []string
}

func (e *siteEntry) row(site domain.Site) []string {
	return []string{
		site.URL,
		site.Title,
		site.Template,
		strings.Join(e.admins, memberDelimiter),
		strings.Join(e.owners, memberDelimiter),
		strings.Join(e.members, memberDelimiter),
		strings.Join(e.notes, memberDelimiter),
	}
}

func (s *ReportService) reportSite(ctx context.Context, site domain.Site, sink driven.ReportSink) domain.OperationResult {
	admins, err := microsoft.Invoke(ctx, s.inv, "site admins", func(ctx context.Context) ([]domain.Principal, error) {
		return s.dir.SiteAdmins(ctx, site.URL)
	})
	if err != nil {
		return domain.Failed(site.URL, ActionReportAdmins, failureKind(err), err.Error())
	}

	entry := &siteEntry{}
	for _, admin := range admins {
		s.reportPrincipal(ctx, site, admin, entry)
	}

	if err := sink.Write(entry.row(site)); err != nil {
		return domain.Failed(site.URL, ActionReportAdmins, "ReportWrite", err.Error())
	}
	return domain.Success(site.URL, ActionReportAdmins, fmt.Sprintf("%d administrators", len(admins)))
}

// reportPrincipal dispatches on the principal variant and appends the
// resolved entries.
func (s *ReportService) reportPrincipal(ctx context.Context, site domain.Site, admin domain.Principal, entry *siteEntry) {
	switch admin.Kind {
	case domain.KindUser:
		entry.admins = append(entry.admins, formatPrincipal(admin))

	case domain.KindDirectoryGroup:
		s.reportDirectoryGroup(ctx, admin, entry)

	case domain.KindSecurityGroup:
		if strings.Contains(strings.ToLower(admin.DisplayName), "owners") {
			s.reportOwnersGroup(ctx, site, admin, entry)
			return
		}
		entry.admins = append(entry.admins, formatPrincipal(admin))

	default:
		entry.admins = append(entry.admins,
			fmt.Sprintf("%s [%s]", formatPrincipal(admin), admin.RawType))
	}
}

// reportDirectoryGroup expands an Entra group into owners and members,
// unless the group is on the ignore list.
func (s *ReportService) reportDirectoryGroup(ctx context.Context, admin domain.Principal, entry *siteEntry) {
	if _, ignored := s.ignore[strings.ToLower(admin.GroupID)]; ignored {
		entry.notes = append(entry.notes,
			fmt.Sprintf("%s: excluded from expansion", admin.DisplayName))
		return
	}

	owners, err := microsoft.Invoke(ctx, s.inv, "group owners", func(ctx context.Context) ([]domain.Principal, error) {
		return s.groups.GroupOwners(ctx, admin.GroupID)
	})
	if err != nil {
		entry.notes = append(entry.notes,
			fmt.Sprintf("%s: unable to retrieve owners", admin.DisplayName))
	} else {
		for _, owner := range owners {
			entry.owners = append(entry.owners,
				fmt.Sprintf("%s (owner of %s)", formatPrincipal(owner), admin.DisplayName))
		}
	}

	members, err := microsoft.Invoke(ctx, s.inv, "group members", func(ctx context.Context) ([]domain.Principal, error) {
		return s.groups.GroupMembers(ctx, admin.GroupID)
	})
	if err != nil {
		entry.notes = append(entry.notes,
			fmt.Sprintf("%s: unable to retrieve members", admin.DisplayName))
		return
	}
	for _, member := range members {
		entry.members = append(entry.members,
			fmt.Sprintf("%s (member of %s)", formatPrincipal(member), admin.DisplayName))
	}
}

// reportOwnersGroup resolves an owner-style SharePoint group with tiered
// fallback: the named group first, then the site's associated owners
// group, then a sentinel note. Each tier runs only after the previous one
// has failed.
func (s *ReportService) reportOwnersGroup(ctx context.Context, site domain.Site, admin domain.Principal, entry *siteEntry) {
	members, err := microsoft.Invoke(ctx, s.inv, "site group members", func(ctx context.Context) ([]domain.Principal, error) {
		return s.dir.SiteGroupMembers(ctx, site.URL, admin.DisplayName)
	})
	if err == nil {
		for _, member := range members {
			entry.members = append(entry.members,
				fmt.Sprintf("%s (via %s)", formatPrincipal(member), admin.DisplayName))
		}
		return
	}

	s.log.Debug().Str("site", site.URL).Str("group", admin.DisplayName).Err(err).
		Msg("primary group resolution failed, trying associated owners group")

	fallback, err := microsoft.Invoke(ctx, s.inv, "associated owners group", func(ctx context.Context) ([]domain.Principal, error) {
		return s.dir.SiteOwnersGroup(ctx, site.URL)
	})
	if err != nil {
		entry.notes = append(entry.notes,
			fmt.Sprintf("%s: unable to retrieve members", admin.DisplayName))
		return
	}
	for _, member := range fallback {
		entry.members = append(entry.members,
			fmt.Sprintf("%s (via %s, fallback)", formatPrincipal(member), admin.DisplayName))
	}
}

func formatPrincipal(p domain.Principal) string {
	login := domain.BareIdentity(p.LoginName)
	if p.Email != "" && !domain.SameIdentity(p.Email, login) {
		return fmt.Sprintf("%s <%s> %s", p.DisplayName, p.Email, login)
	}
	return fmt.Sprintf("%s <%s>", p.DisplayName, login)
}
