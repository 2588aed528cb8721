package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sellos-g/web-gate/internal/core/gate"
)

// ctxTab returns the browser tab bound by the Browser middleware.
func ctxTab(c echo.Context) (*gate.Tab, error) {
	tab, ok := c.Get("tab").(*gate.Tab)
	if !ok || tab == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "browser session unavailable")
	}
	return tab, nil
}

// ctxClaims extracts the bearer claims injected by the Auth middleware.
// An empty subject means the middleware did not run.
func ctxClaims(c echo.Context) (userID, token string, err error) {
	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	token, _ = c.Get("token").(string)
	return userID, token, nil
}
