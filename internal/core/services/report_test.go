package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonops/spoadmin/internal/core/domain"
)

func person(display, upn string) domain.Principal {
	return domain.Principal{
		Kind:        domain.KindUser,
		DisplayName: display,
		LoginName:   "i:0#.f|membership|" + upn,
		Email:       upn,
	}
}

func directoryGroup(display, id string) domain.Principal {
	return domain.Principal{
		Kind:        domain.KindDirectoryGroup,
		DisplayName: display,
		LoginName:   "c:0o.c|federateddirectoryclaimprovider|" + id,
		GroupID:     id,
	}
}

func securityGroup(display string) domain.Principal {
	return domain.Principal{
		Kind:        domain.KindSecurityGroup,
		DisplayName: display,
		LoginName:   "c:0t.c|tenant|" + display,
	}
}

func TestReportServiceWritesOneRowPerSite(t *testing.T) {
	dir := &mockDirectory{
		admins: map[string][]domain.Principal{
			"https://contoso.sharepoint.com/sites/a": {person("Alice Adams", "alice@contoso.com")},
			"https://contoso.sharepoint.com/sites/b": {person("Bob Brown", "bob@contoso.com")},
		},
	}
	sink := &memorySink{}
	svc := NewReportService(dir, &mockGroups{}, testInvoker(), nil, zerolog.Nop())

	report, err := svc.Run(context.Background(), iterOf(
		domain.Site{URL: "https://contoso.sharepoint.com/sites/a", Title: "A", Template: "STS#0"},
		domain.Site{URL: "https://contoso.sharepoint.com/sites/b", Title: "B", Template: "STS#0"},
	), sink)

	require.NoError(t, err)
	require.Len(t, sink.rows, 2)
	assert.Equal(t, "https://contoso.sharepoint.com/sites/a", sink.rows[0][0])
	assert.Equal(t, "A", sink.rows[0][1])
	assert.Equal(t, "STS#0", sink.rows[0][2])
	assert.Contains(t, sink.rows[0][3], "Alice Adams <alice@contoso.com>")
	assert.Equal(t, 2, report.Summary.Succeeded)
}

func TestReportServiceExpandsDirectoryGroup(t *testing.T) {
	groupID := "2f5c9a1e-77aa-4b01-9c0d-000000000000"
	dir := &mockDirectory{
		admins: map[string][]domain.Principal{
			"https://contoso.sharepoint.com/sites/a": {
				directoryGroup("Finance Leads", groupID),
			},
		},
	}
	groups := &mockGroups{
		owners: map[string][]domain.Principal{
			groupID: {person("Olivia Owner", "olivia@contoso.com")},
		},
		members: map[string][]domain.Principal{
			groupID: {
				person("Mark Member", "mark@contoso.com"),
				person("Mary Member", "mary@contoso.com"),
			},
		},
	}
	sink := &memorySink{}
	svc := NewReportService(dir, groups, testInvoker(), nil, zerolog.Nop())

	_, err := svc.Run(context.Background(),
		iterOf(domain.Site{URL: "https://contoso.sharepoint.com/sites/a"}), sink)

	require.NoError(t, err)
	require.Len(t, sink.rows, 1)
	assert.Contains(t, sink.rows[0][4], "Olivia Owner")
	assert.Contains(t, sink.rows[0][4], "(owner of Finance Leads)")
	assert.Contains(t, sink.rows[0][5], "Mark Member")
	assert.Contains(t, sink.rows[0][5], "Mary Member")
	assert.Contains(t, sink.rows[0][5], "(member of Finance Leads)")
}

func TestReportServiceIgnoreList(t *testing.T) {
	groupID := "AA11BB22-0000-4000-8000-000000000000"
	dir := &mockDirectory{
		admins: map[string][]domain.Principal{
			"https://contoso.sharepoint.com/sites/a": {
				directoryGroup("All Employees", groupID),
			},
		},
	}
	groups := &mockGroups{}
	sink := &memorySink{}
	// Ignore list entries compare case-insensitively.
	svc := NewReportService(dir, groups, testInvoker(), []string{"aa11bb22-0000-4000-8000-000000000000"}, zerolog.Nop())

	_, err := svc.Run(context.Background(),
		iterOf(domain.Site{URL: "https://contoso.sharepoint.com/sites/a"}), sink)

	require.NoError(t, err)
	require.Len(t, sink.rows, 1)
	assert.Empty(t, sink.rows[0][4])
	assert.Empty(t, sink.rows[0][5])
	assert.Contains(t, sink.rows[0][6], "All Employees: excluded from expansion")
}

func TestReportServiceOwnersGroupPrimary(t *testing.T) {
	dir := &mockDirectory{
		admins: map[string][]domain.Principal{
			"https://contoso.sharepoint.com/sites/a": {securityGroup("Site A Owners")},
		},
		siteGroups: map[string][]domain.Principal{
			"Site A Owners": {person("Pat Primary", "pat@contoso.com")},
		},
	}
	sink := &memorySink{}
	svc := NewReportService(dir, &mockGroups{}, testInvoker(), nil, zerolog.Nop())

	_, err := svc.Run(context.Background(),
		iterOf(domain.Site{URL: "https://contoso.sharepoint.com/sites/a"}), sink)

	require.NoError(t, err)
	require.Len(t, sink.rows, 1)
	assert.Contains(t, sink.rows[0][5], "Pat Primary")
	assert.Contains(t, sink.rows[0][5], "(via Site A Owners)")
	assert.NotContains(t, sink.rows[0][5], "fallback")
}

func TestReportServiceOwnersGroupFallback(t *testing.T) {
	dir := &mockDirectory{
		admins: map[string][]domain.Principal{
			"https://contoso.sharepoint.com/sites/a": {securityGroup("Site A Owners")},
		},
		siteGroupErr: errors.New("group not found"),
		ownersGroup: map[string][]domain.Principal{
			"https://contoso.sharepoint.com/sites/a": {
				person("Fred Fallback", "fred@contoso.com"),
				person("Fay Fallback", "fay@contoso.com"),
			},
		},
	}
	sink := &memorySink{}
	svc := NewReportService(dir, &mockGroups{}, testInvoker(), nil, zerolog.Nop())

	_, err := svc.Run(context.Background(),
		iterOf(domain.Site{URL: "https://contoso.sharepoint.com/sites/a"}), sink)

	require.NoError(t, err)
	require.Len(t, sink.rows, 1)
	assert.Contains(t, sink.rows[0][5], "Fred Fallback")
	assert.Contains(t, sink.rows[0][5], "Fay Fallback")
	assert.Contains(t, sink.rows[0][5], "(via Site A Owners, fallback)")
	assert.Empty(t, sink.rows[0][6], "no note when the fallback tier succeeds")
}

func TestReportServiceOwnersGroupUnresolvable(t *testing.T) {
	dir := &mockDirectory{
		admins: map[string][]domain.Principal{
			"https://contoso.sharepoint.com/sites/a": {securityGroup("Site A Owners")},
		},
		siteGroupErr:   errors.New("group not found"),
		ownersGroupErr: errors.New("access denied"),
	}
	sink := &memorySink{}
	svc := NewReportService(dir, &mockGroups{}, testInvoker(), nil, zerolog.Nop())

	_, err := svc.Run(context.Background(),
		iterOf(domain.Site{URL: "https://contoso.sharepoint.com/sites/a"}), sink)

	require.NoError(t, err)
	require.Len(t, sink.rows, 1)
	assert.Empty(t, sink.rows[0][5])
	assert.Contains(t, sink.rows[0][6], "Site A Owners: unable to retrieve members")
}

func TestReportServiceGroupErrorsBecomeNotes(t *testing.T) {
	groupID := "11112222-3333-4000-8000-000000000000"
	dir := &mockDirectory{
		admins: map[string][]domain.Principal{
			"https://contoso.sharepoint.com/sites/a": {
				directoryGroup("Finance Leads", groupID),
			},
		},
	}
	groups := &mockGroups{
		ownersErr:  errors.New("graph timeout"),
		membersErr: errors.New("graph timeout"),
	}
	sink := &memorySink{}
	svc := NewReportService(dir, groups, testInvoker(), nil, zerolog.Nop())

	report, err := svc.Run(context.Background(),
		iterOf(domain.Site{URL: "https://contoso.sharepoint.com/sites/a"}), sink)

	require.NoError(t, err)
	assert.Contains(t, sink.rows[0][6], "Finance Leads: unable to retrieve owners")
	assert.Contains(t, sink.rows[0][6], "Finance Leads: unable to retrieve members")
	// Expansion trouble degrades the row, not the site result.
	assert.Equal(t, 1, report.Summary.Succeeded)
}

func TestReportServiceAdminFetchFailure(t *testing.T) {
	dir := &mockDirectory{adminsErr: errors.New("503 service unavailable")}
	sink := &memorySink{}
	svc := NewReportService(dir, &mockGroups{}, testInvoker(), nil, zerolog.Nop())

	report, err := svc.Run(context.Background(),
		iterOf(domain.Site{URL: "https://contoso.sharepoint.com/sites/a"}), sink)

	require.NoError(t, err)
	assert.Empty(t, sink.rows, "no row for a site whose admin set could not be read")
	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.OutcomeFailed, report.Results[0].Outcome)
}
