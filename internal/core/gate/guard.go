package gate

import (
	"slices"

	"github.com/sellos-g/web-gate/internal/core/domain"
)

// DecisionKind is the outcome of a guard evaluation.
type DecisionKind int

const (
	DecisionRender DecisionKind = iota
	DecisionLoading
	DecisionRedirectLogin
	DecisionRedirectUnauthorized
	DecisionRedirectRoleHome
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionRender:
		return "render"
	case DecisionLoading:
		return "loading"
	case DecisionRedirectLogin:
		return "redirect_login"
	case DecisionRedirectUnauthorized:
		return "redirect_unauthorized"
	case DecisionRedirectRoleHome:
		return "redirect_role_home"
	default:
		return "invalid"
	}
}

// Decision is what a page should do for the current session. Target is set
// for redirects.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// IsRedirect reports whether the decision sends the tab elsewhere.
func (d Decision) IsRedirect() bool {
	return d.Target != ""
}

// Guard decides whether a role-gated page may render. An empty required set
// accepts any authenticated role. No decision is taken while loading.
func Guard(s Session, required ...domain.Role) Decision {
	switch {
	case s.Loading:
		return Decision{Kind: DecisionLoading}
	case !s.IsAuthenticated:
		return Decision{Kind: DecisionRedirectLogin, Target: domain.PathLogin}
	case len(required) > 0 && !slices.Contains(required, s.Role()):
		return Decision{Kind: DecisionRedirectUnauthorized, Target: domain.PathUnauthorized}
	default:
		return Decision{Kind: DecisionRender}
	}
}

// PublicOnly is the inverse guard: authenticated sessions are sent to their
// role home. A home equal to path renders instead, so an unknown role sitting
// on the login page is not bounced forever.
func PublicOnly(s Session, path string) Decision {
	if s.Loading {
		return Decision{Kind: DecisionLoading}
	}
	if s.IsAuthenticated {
		if home := domain.RoleHome(s.Role()); home != path {
			return Decision{Kind: DecisionRedirectRoleHome, Target: home}
		}
	}
	return Decision{Kind: DecisionRender}
}
