package domain

import "strings"

// PrincipalKind distinguishes the variants a site administrator entry
// can take. String comparisons on raw login names stay inside ParsePrincipal;
// everything downstream dispatches on the kind.
type PrincipalKind string

const (
	// KindUser is an individual user account.
	KindUser PrincipalKind = "user"
	// KindSecurityGroup is a SharePoint or security group that is not
	// backed by a directory group object.
	KindSecurityGroup PrincipalKind = "security-group"
	// KindDirectoryGroup is an Entra ID (Azure AD) group surfaced through
	// the federated directory claim provider.
	KindDirectoryGroup PrincipalKind = "directory-group"
)

// Claim prefix conventions used in SharePoint login names.
const (
	userClaimPrefix           = "i:0#.f|membership|"
	directoryGroupClaimPrefix = "c:0o.c|federateddirectoryclaimprovider|"
	securityGroupClaimPrefix  = "c:0t.c|tenant|"
	ownersClaimSuffix         = "_o"
)

// Principal is an actor that can hold an administrative relationship to a
// site: a user, a security group, or a directory-backed group.
type Principal struct {
	Kind        PrincipalKind
	DisplayName string
	// LoginName is the stable identity key, unique within a site's
	// administrator set.
	LoginName string
	// Email is the contact address when the directory exposes one.
	Email string
	// GroupID is the Entra group object ID, set only for KindDirectoryGroup.
	GroupID string
	// OwnersClaim is true when the login name addresses the owners subset
	// of a directory group rather than its full membership.
	OwnersClaim bool
	// RawType carries the API's principal-type label for variants that do
	// not map onto a known kind.
	RawType string
}

// ParsePrincipal classifies a raw administrator entry by its login name
// convention and extracts the directory group ID when present.
func ParsePrincipal(displayName, loginName, email, rawType string) Principal {
	p := Principal{
		DisplayName: displayName,
		LoginName:   loginName,
		Email:       email,
		RawType:     rawType,
	}

	switch {
	case strings.HasPrefix(loginName, directoryGroupClaimPrefix):
		p.Kind = KindDirectoryGroup
		id := strings.TrimPrefix(loginName, directoryGroupClaimPrefix)
		if strings.HasSuffix(id, ownersClaimSuffix) {
			id = strings.TrimSuffix(id, ownersClaimSuffix)
			p.OwnersClaim = true
		}
		p.GroupID = id
	case strings.HasPrefix(loginName, securityGroupClaimPrefix):
		p.Kind = KindSecurityGroup
	case strings.HasPrefix(loginName, userClaimPrefix):
		p.Kind = KindUser
	case strings.EqualFold(rawType, "User"):
		p.Kind = KindUser
	case strings.EqualFold(rawType, "SharePointGroup"), strings.EqualFold(rawType, "SecurityGroup"):
		p.Kind = KindSecurityGroup
	default:
		p.Kind = KindSecurityGroup
	}

	return p
}

// SameIdentity reports whether two login names refer to the same principal.
// Login names embed UPNs, which are case-insensitive in the directory.
func SameIdentity(a, b string) bool {
	return strings.EqualFold(a, b)
}

// BareIdentity strips the claim prefix from a user login name, leaving the
// UPN. Non-user claims are returned unchanged.
func BareIdentity(loginName string) string {
	return strings.TrimPrefix(loginName, userClaimPrefix)
}
