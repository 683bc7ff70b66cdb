package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/halcyonops/spoadmin/internal/connectors/microsoft"
	"github.com/halcyonops/spoadmin/internal/core/domain"
	"github.com/halcyonops/spoadmin/internal/core/ports/driven"
)

// sliceIter is a SiteIterator over a fixed slice.
type sliceIter struct {
	sites []domain.Site
	pos   int
	skips []domain.OperationResult
}

func iterOf(sites ...domain.Site) *sliceIter {
	return &sliceIter{sites: sites}
}

func (it *sliceIter) Next() (domain.Site, bool) {
	if it.pos >= len(it.sites) {
		return domain.Site{}, false
	}
	site := it.sites[it.pos]
	it.pos++
	return site, true
}

func (it *sliceIter) Skips() []domain.OperationResult {
	return it.skips
}

type setAdminCall struct {
	siteURL   string
	loginName string
	isAdmin   bool
}

type createGroupCall struct {
	siteURL     string
	displayName string
	alias       string
	isPublic    bool
}

// mockDirectory implements driven.SiteDirectory with canned responses and
// call counting.
type mockDirectory struct {
	sites      []domain.Site
	listErr    error
	sitesByURL map[string]domain.Site
	getSiteErr error

	admins    map[string][]domain.Principal
	adminsErr error

	setAdminCalls []setAdminCall
	setAdminErr   error

	siteGroups     map[string][]domain.Principal
	siteGroupErr   error
	ownersGroup    map[string][]domain.Principal
	ownersGroupErr error

	// features is keyed by scope + ":" + featureID.
	features     map[string]bool
	featureErr   error
	featureCalls int

	aliasTaken map[string]bool
	aliasErr   error
	aliasCalls []string

	createCalls []createGroupCall
	createErr   error
}

var _ driven.SiteDirectory = (*mockDirectory)(nil)

func (m *mockDirectory) ListSites(_ context.Context, _ bool) ([]domain.Site, error) {
	return m.sites, m.listErr
}

func (m *mockDirectory) GetSite(_ context.Context, siteURL string) (domain.Site, error) {
	if m.getSiteErr != nil {
		return domain.Site{}, m.getSiteErr
	}
	if site, ok := m.sitesByURL[siteURL]; ok {
		return site, nil
	}
	return domain.Site{URL: siteURL}, nil
}

func (m *mockDirectory) SiteAdmins(_ context.Context, siteURL string) ([]domain.Principal, error) {
	if m.adminsErr != nil {
		return nil, m.adminsErr
	}
	return m.admins[siteURL], nil
}

func (m *mockDirectory) SetSiteAdmin(_ context.Context, siteURL, loginName string, isAdmin bool) error {
	m.setAdminCalls = append(m.setAdminCalls, setAdminCall{siteURL, loginName, isAdmin})
	if m.setAdminErr != nil {
		return m.setAdminErr
	}
	// Keep the mock's state consistent so idempotence tests can re-run.
	if m.admins == nil {
		m.admins = map[string][]domain.Principal{}
	}
	if isAdmin {
		m.admins[siteURL] = append(m.admins[siteURL], domain.Principal{
			Kind: domain.KindUser, LoginName: loginName,
		})
	}
	return nil
}

func (m *mockDirectory) SiteGroupMembers(_ context.Context, siteURL, groupName string) ([]domain.Principal, error) {
	if m.siteGroupErr != nil {
		return nil, m.siteGroupErr
	}
	return m.siteGroups[groupName], nil
}

func (m *mockDirectory) SiteOwnersGroup(_ context.Context, siteURL string) ([]domain.Principal, error) {
	if m.ownersGroupErr != nil {
		return nil, m.ownersGroupErr
	}
	return m.ownersGroup[siteURL], nil
}

func (m *mockDirectory) FeatureEnabled(_ context.Context, _ string, scope driven.FeatureScope, featureID string) (bool, error) {
	m.featureCalls++
	if m.featureErr != nil {
		return false, m.featureErr
	}
	return m.features[string(scope)+":"+featureID], nil
}

func (m *mockDirectory) AliasAvailable(_ context.Context, alias string) (bool, error) {
	m.aliasCalls = append(m.aliasCalls, alias)
	if m.aliasErr != nil {
		return false, m.aliasErr
	}
	return !m.aliasTaken[alias], nil
}

func (m *mockDirectory) CreateGroupForSite(_ context.Context, siteURL, displayName, alias string, isPublic bool) error {
	m.createCalls = append(m.createCalls, createGroupCall{siteURL, displayName, alias, isPublic})
	return m.createErr
}

// mockGroups implements driven.GroupDirectory.
type mockGroups struct {
	owners     map[string][]domain.Principal
	members    map[string][]domain.Principal
	ownersErr  error
	membersErr error
}

var _ driven.GroupDirectory = (*mockGroups)(nil)

func (m *mockGroups) GroupOwners(_ context.Context, groupID string) ([]domain.Principal, error) {
	if m.ownersErr != nil {
		return nil, m.ownersErr
	}
	return m.owners[groupID], nil
}

func (m *mockGroups) GroupMembers(_ context.Context, groupID string) ([]domain.Principal, error) {
	if m.membersErr != nil {
		return nil, m.membersErr
	}
	return m.members[groupID], nil
}

// memorySink collects report rows.
type memorySink struct {
	rows [][]string
	err  error
}

var _ driven.ReportSink = (*memorySink)(nil)

func (s *memorySink) Write(row []string) error {
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, row)
	return nil
}

func (s *memorySink) Close() error { return nil }

func testInvoker() *microsoft.Invoker {
	return microsoft.NewInvoker(3, time.Millisecond, zerolog.Nop())
}

func user(login string) domain.Principal {
	return domain.Principal{
		Kind:        domain.KindUser,
		DisplayName: login,
		LoginName:   "i:0#.f|membership|" + login,
		Email:       login,
	}
}
