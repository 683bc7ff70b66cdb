package services

import (
	"strings"

	"github.com/google/uuid"
)

// maxAliasLength is the tenant directory's alias length ceiling.
const maxAliasLength = 60

// randomAliasLength is the length of the fallback token used when a title
// strips down to nothing.
const randomAliasLength = 8

// ProposedGroupName derives the display name for the group a site will be
// connected to: the site title, or the last URL path segment when the
// title is blank.
func ProposedGroupName(title, siteURL string) string {
	if name := strings.TrimSpace(title); name != "" && !strings.EqualFold(name, "unknown") {
		return name
	}

	trimmed := strings.TrimRight(siteURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return trimmed
}

// DeriveAlias turns a display name into a group alias: non-alphanumeric
// characters stripped, lowercased, truncated to the directory's ceiling.
// A name with no usable characters falls back to a random token. The
// derivation is deterministic for any name that survives stripping.
func DeriveAlias(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}

	alias := b.String()
	if alias == "" {
		alias = randomAlias()
	}
	if len(alias) > maxAliasLength {
		alias = alias[:maxAliasLength]
	}
	return alias
}

// randomAlias produces a fresh alphanumeric token.
func randomAlias() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return token[:randomAliasLength]
}

// aliasValid rejects empty aliases and aliases containing whitespace.
func aliasValid(alias string) bool {
	return alias != "" && !strings.ContainsAny(alias, " \t\r\n")
}
