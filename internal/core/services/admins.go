package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/halcyonops/spoadmin/internal/connectors/microsoft"
	"github.com/halcyonops/spoadmin/internal/core/domain"
	"github.com/halcyonops/spoadmin/internal/core/ports/driven"
)

// Admin pipeline action names.
const (
	ActionAddAdmin    = "add-admin"
	ActionRemoveAdmin = "remove-admin"
)

// AdminService adds or removes a site collection administrator across the
// working set. All remote calls go through the retrying invoker, and each
// site's failure is isolated from the rest of the batch.
type AdminService struct {
	dir driven.SiteDirectory
	inv *microsoft.Invoker
	log zerolog.Logger
}

// NewAdminService wires the admin pipeline.
func NewAdminService(dir driven.SiteDirectory, inv *microsoft.Invoker, log zerolog.Logger) *AdminService {
	return &AdminService{dir: dir, inv: inv, log: log}
}

// AdminOptions selects the action for one run.
type AdminOptions struct {
	// LoginName is the identity key of the principal to add or remove.
	LoginName string
	// Remove revokes the role instead of granting it.
	Remove bool
	// DryRun evaluates membership but issues no mutation.
	DryRun bool
}

// Run processes the working set and returns the run report.
func (s *AdminService) Run(ctx context.Context, sites driven.SiteIterator, opts AdminOptions) (*RunReport, error) {
	if opts.LoginName == "" {
		return nil, fmt.Errorf("login name required: %w", domain.ErrConfigurationInvalid)
	}

	return runBatch(ctx, s.log, sites, func(ctx context.Context, site domain.Site) domain.OperationResult {
		return s.processSite(ctx, site, opts)
	})
}

// processSite is the per-site pipeline: fetch the administrator set, test
// membership on the identity key, mutate only when the desired state is
// not already in place.
func (s *AdminService) processSite(ctx context.Context, site domain.Site, opts AdminOptions) domain.OperationResult {
	action := ActionAddAdmin
	if opts.Remove {
		action = ActionRemoveAdmin
	}

	admins, err := microsoft.Invoke(ctx, s.inv, "site admins", func(ctx context.Context) ([]domain.Principal, error) {
		return s.dir.SiteAdmins(ctx, site.URL)
	})
	if err != nil {
		return domain.Failed(site.URL, action, failureKind(err), err.Error())
	}

	present := adminExists(admins, opts.LoginName)

	switch {
	case !opts.Remove && present:
		return domain.Skipped(site.URL, action, domain.SkipAlreadyPresent)
	case opts.Remove && !present:
		return domain.Skipped(site.URL, action, domain.SkipAlreadyAbsent)
	}

	if opts.DryRun {
		return domain.Skipped(site.URL, action, domain.SkipDryRun)
	}

	err = s.inv.Do(ctx, "set site admin", func(ctx context.Context) error {
		return s.dir.SetSiteAdmin(ctx, site.URL, opts.LoginName, !opts.Remove)
	})
	if err != nil {
		return domain.Failed(site.URL, action, failureKind(err), err.Error())
	}

	detail := "Added"
	if opts.Remove {
		detail = "Removed"
	}
	return domain.Success(site.URL, action, detail)
}

// adminExists tests membership by identity key. Display names are not
// consulted; login names compare case-insensitively.
func adminExists(admins []domain.Principal, loginName string) bool {
	for _, admin := range admins {
		if domain.SameIdentity(admin.LoginName, loginName) {
			return true
		}
		if domain.SameIdentity(domain.BareIdentity(admin.LoginName), loginName) {
			return true
		}
	}
	return false
}

// failureKind classifies a per-site failure for the result record.
func failureKind(err error) string {
	var exhausted *microsoft.RetryExhaustedError
	switch {
	case errors.As(err, &exhausted):
		return "RetryExhausted"
	case errors.Is(err, microsoft.ErrUnauthorised), errors.Is(err, microsoft.ErrForbidden),
		errors.Is(err, domain.ErrResourceUnreachable):
		return "ResourceUnreachable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Cancelled"
	default:
		return "RemoteError"
	}
}
