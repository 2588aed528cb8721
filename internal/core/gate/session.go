package gate

import "github.com/sellos-g/web-gate/internal/core/domain"

// Session is a point-in-time copy of a tab's authentication state. It is the
// only view of the session that handlers and guards get.
type Session struct {
	User            *domain.Identity `json:"user" swaggertype:"object"`
	Token           string           `json:"token,omitempty"`
	Loading         bool             `json:"loading"`
	IsAuthenticated bool             `json:"isAuthenticated"`
}

// Role returns the normalized role of the session user.
func (s Session) Role() domain.Role {
	if s.User == nil {
		return domain.RoleUnknown
	}
	return s.User.Role()
}

// State is the redirect-policy state of a tab.
type State int

const (
	StateAuthenticating State = iota
	StateUnauthenticated
	StateAuthenticatedOnPublic
	StateAuthenticatedOnProtected
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticatedOnPublic:
		return "authenticated_on_public"
	case StateAuthenticatedOnProtected:
		return "authenticated_on_protected"
	default:
		return "invalid"
	}
}
