package domain

// Application routes.
const (
	PathRoot           = "/"
	PathLogin          = "/login"
	PathForgotPassword = "/forgot-password"
	PathResetPassword  = "/reset-password/:token"
	PathVerifyEmail    = "/verificar-email"
	PathUnauthorized   = "/no-autorizado"

	PathAdminHome    = "/admin/dashboard"
	PathEmployeeHome = "/empleado/dashboard"
	PathClientHome   = "/cliente/dashboard"
)

// IsPublicOnlyRedirectPath reports whether an authenticated session sitting on
// path should be sent to its role home when the auth state changes.
func IsPublicOnlyRedirectPath(path string) bool {
	return path == PathRoot || path == PathLogin
}
