package domain

import "strings"

// Role is the normalized role tag of an identity. Raw strings coming from the
// identity API or from persisted sessions go through ParseRole exactly once.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdministrator
	RoleEmployee
	RoleClient
)

// Canonical wire tags. RoleTagAdminShort and RoleTagAdminEnglish are older
// spellings still found in persisted sessions and seeded accounts.
const (
	RoleTagAdministrator = "administrador"
	RoleTagAdminShort    = "admin"
	RoleTagAdminEnglish  = "administrator"
	RoleTagEmployee      = "empleado"
	RoleTagClient        = "cliente"
)

// ParseRole maps a raw role tag to a Role, case-insensitively.
// Unrecognized input yields RoleUnknown.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case RoleTagAdministrator, RoleTagAdminShort, RoleTagAdminEnglish:
		return RoleAdministrator
	case RoleTagEmployee:
		return RoleEmployee
	case RoleTagClient:
		return RoleClient
	default:
		return RoleUnknown
	}
}

// String returns the canonical tag, or "" for RoleUnknown.
func (r Role) String() string {
	switch r {
	case RoleAdministrator:
		return RoleTagAdministrator
	case RoleEmployee:
		return RoleTagEmployee
	case RoleClient:
		return RoleTagClient
	default:
		return ""
	}
}

// Label is String with a placeholder for RoleUnknown, used for metric labels.
func (r Role) Label() string {
	if r == RoleUnknown {
		return "unknown"
	}
	return r.String()
}

// RoleHome returns the landing route of a role. Unknown roles fall back to the
// login page.
func RoleHome(r Role) string {
	switch r {
	case RoleAdministrator:
		return PathAdminHome
	case RoleEmployee:
		return PathEmployeeHome
	case RoleClient:
		return PathClientHome
	default:
		return PathLogin
	}
}
