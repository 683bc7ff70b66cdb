// Package sitelist builds the working set of site collections for a run,
// either by querying the tenant directory or by parsing a CSV site list,
// and applies the operation's scope filter.
package sitelist

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/halcyonops/spoadmin/internal/core/domain"
	"github.com/halcyonops/spoadmin/internal/core/ports/driven"
)

// Accepted CSV header names, matched case-insensitively.
var (
	urlHeaders      = []string{"Url", "SiteUrl"}
	titleHeaders    = []string{"Title", "SiteTitle"}
	templateHeaders = []string{"Template", "TemplateId"}
)

// Filter selects which enumerated sites belong to the operation's scope.
// The zero value keeps everything.
type Filter struct {
	// ExcludePersonal drops OneDrive personal storage sites.
	ExcludePersonal bool
	// ExcludeGroupConnected drops sites that already have a group.
	ExcludeGroupConnected bool
	// ExcludeIncompatibleTemplates drops templates on the static
	// incompatible list.
	ExcludeIncompatibleTemplates bool
}

// Iter is a finite, non-restartable sequence of sites. It satisfies the
// driven.SiteIterator port.
type Iter struct {
	sites []domain.Site
	pos   int
	skips []domain.OperationResult
}

// Next returns the next site in enumeration order.
func (it *Iter) Next() (domain.Site, bool) {
	if it.pos >= len(it.sites) {
		return domain.Site{}, false
	}
	site := it.sites[it.pos]
	it.pos++
	return site, true
}

// Skips returns results for rows dropped during enumeration.
func (it *Iter) Skips() []domain.OperationResult {
	return it.skips
}

// Len returns the number of sites remaining plus consumed.
func (it *Iter) Len() int {
	return len(it.sites)
}

// FromDirectory enumerates the tenant directory and applies the filter.
func FromDirectory(ctx context.Context, dir driven.SiteDirectory, filter Filter) (*Iter, error) {
	sites, err := dir.ListSites(ctx, !filter.ExcludePersonal)
	if err != nil {
		return nil, fmt.Errorf("enumerate sites: %w", err)
	}

	it := &Iter{}
	for _, site := range sites {
		if reason, drop := filter.excludes(site); drop {
			it.skips = append(it.skips, domain.Skipped(site.URL, "enumerate", reason))
			continue
		}
		it.sites = append(it.sites, site)
	}
	return it, nil
}

// FromCSV parses a site list. The URL column is required; a header without
// a recognised URL column rejects the whole input before processing begins.
// Title and template columns are optional and default to sentinels. Rows
// with an empty URL are dropped with a recorded skip.
func FromCSV(r io.Reader, filter Filter) (*Iter, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read site list header: %w: %w", domain.ErrConfigurationInvalid, err)
	}

	// Rows may carry fewer fields than the header; missing metadata cells
	// default to sentinels.
	reader.FieldsPerRecord = -1

	urlCol := findColumn(header, urlHeaders)
	if urlCol < 0 {
		return nil, fmt.Errorf("site list has no %s column: %w",
			strings.Join(urlHeaders, " or "), domain.ErrConfigurationInvalid)
	}
	titleCol := findColumn(header, titleHeaders)
	templateCol := findColumn(header, templateHeaders)

	it := &Iter{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read site list line %d: %w", line, err)
		}

		site := domain.Site{
			URL:      cell(record, urlCol),
			Title:    domain.TitleUnknown,
			Template: domain.TemplateUnknown,
		}
		if v := cell(record, titleCol); v != "" {
			site.Title = v
		}
		if v := cell(record, templateCol); v != "" {
			site.Template = v
		}

		if site.URL == "" {
			it.skips = append(it.skips, domain.Skipped(
				fmt.Sprintf("line %d", line), "enumerate", domain.SkipMissingURL))
			continue
		}
		if reason, drop := filter.excludes(site); drop {
			it.skips = append(it.skips, domain.Skipped(site.URL, "enumerate", reason))
			continue
		}
		it.sites = append(it.sites, site)
	}

	return it, nil
}

// excludes applies the scope filter, returning the skip reason when the
// site falls outside the operation's scope.
func (f Filter) excludes(site domain.Site) (string, bool) {
	if f.ExcludePersonal && site.IsPersonalSite() {
		return domain.SkipPersonalSite, true
	}
	if f.ExcludeGroupConnected && site.IsGroupConnected() {
		return domain.SkipAlreadyGroupified, true
	}
	if f.ExcludeIncompatibleTemplates && site.Template != domain.TemplateUnknown &&
		domain.TemplateIncompatible(site.Template) {
		return domain.SkipTemplateIncompatible, true
	}
	return "", false
}

func findColumn(header []string, accepted []string) int {
	for i, name := range header {
		for _, want := range accepted {
			if strings.EqualFold(strings.TrimSpace(name), want) {
				return i
			}
		}
	}
	return -1
}

func cell(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}
