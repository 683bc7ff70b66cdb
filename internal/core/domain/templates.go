package domain

import "strings"

// incompatibleTemplates are web templates that cannot be connected to a
// Microsoft 365 group. Shared by the reporting and conversion pipelines;
// membership is fixed, not computed.
var incompatibleTemplates = map[string]struct{}{
	"SITEPAGEPUBLISHING#0":   {},
	"SRCHCEN#0":              {},
	"SRCHCENTERLITE#0":       {},
	"REDIRECTSITE#0":         {},
	"SPSMSITEHOST#0":         {},
	"APPCATALOG#0":           {},
	"POINTPUBLISHINGHUB#0":   {},
	"POINTPUBLISHINGTOPIC#0": {},
	"EDISC#0":                {},
	"EDISC#1":                {},
	"STS#-1":                 {},
	"GROUP#0":                {},
	"TEAMCHANNEL#0":          {},
	"TEAMCHANNEL#1":          {},
}

// personalTemplatePrefix matches OneDrive personal site templates.
const personalTemplatePrefix = "SPSPERS"

// TemplateIncompatible reports whether a web template disqualifies a site
// from group connection.
func TemplateIncompatible(template string) bool {
	upper := strings.ToUpper(strings.TrimSpace(template))
	if strings.HasPrefix(upper, personalTemplatePrefix) {
		return true
	}
	_, found := incompatibleTemplates[upper]
	return found
}
