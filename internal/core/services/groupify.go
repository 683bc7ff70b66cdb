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

// ActionGroupify is the group-connection action name.
const ActionGroupify = "groupify"

// GroupifyHeader is the column layout of the eligibility report.
var GroupifyHeader = []string{
	"Url", "Title", "Template", "Eligible", "Outcome", "ProposedName", "Alias", "Warnings",
}

// GroupifyOptions configures one eligibility run.
type GroupifyOptions struct {
	// Convert performs the conversion for eligible sites; without it the
	// run only reports eligibility.
	Convert bool
	// ConversionLimit caps conversions per run. Zero means no cap. Once
	// the cap is reached, remaining sites are still evaluated but not
	// converted.
	ConversionLimit int
	// PublicGroups creates public rather than private groups.
	PublicGroups bool
}

// GroupifyService evaluates sites for group-connection eligibility and
// optionally converts them. Checks run strictly in order and short-circuit
// on the first disqualifying condition.
type GroupifyService struct {
	dir driven.SiteDirectory
	inv *microsoft.Invoker
	log zerolog.Logger

	// converted counts successful conversions this run. The batch is
	// sequential, so a plain int is sufficient.
	converted int
}

// NewGroupifyService wires the groupify pipeline.
func NewGroupifyService(dir driven.SiteDirectory, inv *microsoft.Invoker, log zerolog.Logger) *GroupifyService {
	return &GroupifyService{dir: dir, inv: inv, log: log}
}

// Converted returns the number of conversions performed this run.
func (s *GroupifyService) Converted() int {
	return s.converted
}

// Run processes the working set, writing one eligibility row per site.
func (s *GroupifyService) Run(ctx context.Context, sites driven.SiteIterator, opts GroupifyOptions, sink driven.ReportSink) (*RunReport, error) {
	return runBatch(ctx, s.log, sites, func(ctx context.Context, site domain.Site) domain.OperationResult {
		return s.evaluateSite(ctx, site, opts, sink)
	})
}

// evaluation carries the intermediate state of one site's check sequence.
type evaluation struct {
	site         domain.Site
	eligible     bool
	outcome      string
	proposedName string
	alias        string
	warnings     []string
}

func (e *evaluation) row() []string {
	eligible := "no"
	if e.eligible {
		eligible = "yes"
	}
	return []string{
		e.site.URL, e.site.Title, e.site.Template,
		eligible, e.outcome, e.proposedName, e.alias,
		strings.Join(e.warnings, memberDelimiter),
	}
}

func (s *GroupifyService) evaluateSite(ctx context.Context, site domain.Site, opts GroupifyOptions, sink driven.ReportSink) domain.OperationResult {
	eval := &evaluation{site: site}
	result := s.runChecks(ctx, eval, opts)

	if err := sink.Write(eval.row()); err != nil {
		return domain.Failed(site.URL, ActionGroupify, "ReportWrite", err.Error())
	}
	return result
}

// runChecks is the ordered eligibility sequence. Terminal conditions stop
// evaluation immediately; later checks never run for a disqualified site.
func (s *GroupifyService) runChecks(ctx context.Context, eval *evaluation, opts GroupifyOptions) domain.OperationResult {
	site := eval.site

	// 1. Template compatibility. Checked before anything remote.
	if domain.TemplateIncompatible(site.Template) {
		eval.outcome = domain.SkipTemplateIncompatible
		return domain.Skipped(site.URL, ActionGroupify, domain.SkipTemplateIncompatible)
	}

	// Already group-connected sites have nothing to convert.
	if site.IsGroupConnected() {
		eval.outcome = domain.SkipAlreadyGroupified
		return domain.Skipped(site.URL, ActionGroupify, domain.SkipAlreadyGroupified)
	}

	// 2. Reachability. A list-supplied row may point at a site we cannot
	// open; refresh metadata while we are here.
	current, err := microsoft.Invoke(ctx, s.inv, "get site", func(ctx context.Context) (domain.Site, error) {
		return s.dir.GetSite(ctx, site.URL)
	})
	if err != nil {
		eval.outcome = "ConnectFailed"
		return domain.Failed(site.URL, ActionGroupify, failureKind(err), err.Error())
	}
	if current.Title != "" {
		eval.site.Title = current.Title
	}
	if domain.TemplateIncompatible(current.Template) {
		eval.site.Template = current.Template
		eval.outcome = domain.SkipTemplateIncompatible
		return domain.Skipped(site.URL, ActionGroupify, domain.SkipTemplateIncompatible)
	}

	// 3. Publishing infrastructure blocks conversion at either scope.
	publishing, err := s.featureAtEitherScope(ctx, site.URL, domain.FeaturePublishingSite, domain.FeaturePublishingWeb)
	if err != nil {
		eval.outcome = "ConnectFailed"
		return domain.Failed(site.URL, ActionGroupify, failureKind(err), err.Error())
	}
	if publishing {
		eval.outcome = domain.SkipPublishingBlocking
		return domain.Skipped(site.URL, ActionGroupify, domain.SkipPublishingBlocking)
	}

	// 4. Modern-UI blocking is a warning: conversion clears it.
	modernBlocked, err := s.featureAtEitherScope(ctx, site.URL, domain.FeatureBlockModernListsSite, domain.FeatureBlockModernListsWeb)
	if err != nil {
		eval.outcome = "ConnectFailed"
		return domain.Failed(site.URL, ActionGroupify, failureKind(err), err.Error())
	}
	if modernBlocked {
		eval.warnings = append(eval.warnings, "modern UI blocking feature will be deactivated by conversion")
	}

	// 5. Name and alias derivation.
	eval.proposedName = ProposedGroupName(eval.site.Title, site.URL)
	eval.alias = DeriveAlias(eval.proposedName)
	if !aliasValid(eval.alias) {
		eval.outcome = "AliasInvalid"
		return domain.Skipped(site.URL, ActionGroupify, "AliasInvalid")
	}

	// 6. Alias collision.
	available, err := microsoft.Invoke(ctx, s.inv, "alias check", func(ctx context.Context) (bool, error) {
		return s.dir.AliasAvailable(ctx, eval.alias)
	})
	if err != nil {
		eval.outcome = "ConnectFailed"
		return domain.Failed(site.URL, ActionGroupify, failureKind(err), err.Error())
	}
	if !available {
		eval.outcome = domain.SkipAliasInUse
		return domain.Skipped(site.URL, ActionGroupify, domain.SkipAliasInUse)
	}

	eval.eligible = true

	// 7–8. Conversion, gated by the per-run ceiling.
	if !opts.Convert {
		eval.outcome = "Eligible"
		return domain.Skipped(site.URL, ActionGroupify, "Eligible, conversion not requested")
	}
	if opts.ConversionLimit > 0 && s.converted >= opts.ConversionLimit {
		eval.outcome = domain.SkipConversionLimit
		return domain.Skipped(site.URL, ActionGroupify, domain.SkipConversionLimit)
	}

	err = s.inv.Do(ctx, "create group for site", func(ctx context.Context) error {
		return s.dir.CreateGroupForSite(ctx, site.URL, eval.proposedName, eval.alias, opts.PublicGroups)
	})
	if err != nil {
		eval.outcome = "ConvertFailed"
		return domain.Failed(site.URL, ActionGroupify, failureKind(err), err.Error())
	}

	s.converted++
	eval.outcome = "Converted"
	return domain.Success(site.URL, ActionGroupify,
		fmt.Sprintf("connected to group %q (alias %s)", eval.proposedName, eval.alias))
}

// featureAtEitherScope checks a feature pair at site then web scope,
// short-circuiting when the site scope already answers.
func (s *GroupifyService) featureAtEitherScope(ctx context.Context, siteURL, siteFeature, webFeature string) (bool, error) {
	enabled, err := microsoft.Invoke(ctx, s.inv, "site feature check", func(ctx context.Context) (bool, error) {
		return s.dir.FeatureEnabled(ctx, siteURL, driven.ScopeSite, siteFeature)
	})
	if err != nil {
		return false, err
	}
	if enabled {
		return true, nil
	}

	return microsoft.Invoke(ctx, s.inv, "web feature check", func(ctx context.Context) (bool, error) {
		return s.dir.FeatureEnabled(ctx, siteURL, driven.ScopeWeb, webFeature)
	})
}
