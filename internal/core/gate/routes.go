package gate

import (
	"net/http"
	"strings"

	"github.com/sellos-g/web-gate/internal/core/domain"
)

// Access classifies how a route is protected.
type Access int

const (
	AccessPublic Access = iota
	AccessPublicOnly
	AccessRoleGated
)

func (a Access) String() string {
	switch a {
	case AccessPublicOnly:
		return "public_only"
	case AccessRoleGated:
		return "role_gated"
	default:
		return "public"
	}
}

// Route is one entry of the page route table.
type Route struct {
	// Path in router syntax (":param" segments allowed).
	Path string
	// Subtree routes also match every path below Path.
	Subtree bool
	Access  Access
	Roles   []domain.Role
	// View names the page the frontend renders.
	View string
	// Message is the static text of informational pages.
	Message string
	// Status is the HTTP status of a rendered page; 0 means 200.
	Status int
}

// Routes is the page table of the application.
var Routes = []Route{
	{Path: domain.PathRoot, Access: AccessPublic, View: "landing"},
	{Path: domain.PathLogin, Access: AccessPublicOnly, View: "login"},
	{Path: domain.PathForgotPassword, Access: AccessPublicOnly, View: "forgot-password"},
	{Path: domain.PathResetPassword, Access: AccessPublicOnly, View: "reset-password"},
	{Path: domain.PathVerifyEmail, Access: AccessPublicOnly, View: "verify-email"},
	{Path: domain.PathAdminHome, Subtree: true, Access: AccessRoleGated, Roles: []domain.Role{domain.RoleAdministrator}, View: "admin-dashboard"},
	{Path: domain.PathEmployeeHome, Subtree: true, Access: AccessRoleGated, Roles: []domain.Role{domain.RoleEmployee}, View: "employee-dashboard"},
	{Path: domain.PathClientHome, Subtree: true, Access: AccessRoleGated, Roles: []domain.Role{domain.RoleClient}, View: "client-dashboard"},
	{Path: domain.PathUnauthorized, Access: AccessPublic, View: "unauthorized", Message: "No tienes permisos para acceder a esta página."},
}

// NotFoundRoute is served for every path the table does not know.
var NotFoundRoute = Route{
	Path:    "/*",
	Access:  AccessPublic,
	View:    "not-found",
	Message: "Página no encontrada.",
	Status:  http.StatusNotFound,
}

// Lookup finds the route serving path.
func Lookup(path string) Route {
	for _, r := range Routes {
		if r.Matches(path) {
			return r
		}
	}
	return NotFoundRoute
}

// Matches reports whether path is served by r.
func (r Route) Matches(path string) bool {
	if r.Subtree {
		return path == r.Path || strings.HasPrefix(path, r.Path+"/")
	}
	return matchPattern(r.Path, path)
}

// Decide applies the route's guard to a session.
func (r Route) Decide(s Session, path string) Decision {
	switch r.Access {
	case AccessPublicOnly:
		return PublicOnly(s, path)
	case AccessRoleGated:
		return Guard(s, r.Roles...)
	default:
		return Decision{Kind: DecisionRender}
	}
}

func matchPattern(pattern, path string) bool {
	if !strings.Contains(pattern, ":") {
		return pattern == path
	}
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, ":") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}
