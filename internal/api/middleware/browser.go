package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sellos-g/web-gate/internal/core/gate"
)

// HeaderCurrentPath carries the frontend's current location on session API
// calls, which are not made from the page they act on.
const HeaderCurrentPath = "X-Current-Path"

const browserCookieMaxAge = 365 * 24 * time.Hour

// CookieConfig describes the browser id cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Locator extracts the tab location a request refers to. An empty result
// leaves the tab where it is.
type Locator func(c echo.Context) string

// PagePath locates page requests by their own path.
func PagePath(c echo.Context) string {
	return c.Request().URL.Path
}

// ClientPath locates API requests by the X-Current-Path header.
func ClientPath(c echo.Context) string {
	p := c.Request().Header.Get(HeaderCurrentPath)
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return ""
	}
	return p
}

// Browser binds the request to the tab of its browser id cookie, issuing a
// new id when the cookie is missing or invalid. The tab stays locked until
// the handler returns, so requests of one browser never interleave.
func Browser(registry *gate.Registry, cookie CookieConfig, locate Locator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			browserID := ""
			if ck, err := c.Cookie(cookie.Name); err == nil {
				if id, err := uuid.Parse(ck.Value); err == nil {
					browserID = id.String()
				}
			}
			if browserID == "" {
				browserID = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cookie.Name,
					Value:    browserID,
					Path:     "/",
					MaxAge:   int(browserCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cookie.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			tab := registry.Acquire(c.Request().Context(), browserID, locate(c))
			defer tab.Release()

			c.Set("browser_id", browserID)
			c.Set("tab", tab)
			return next(c)
		}
	}
}
