package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sellos-g/web-gate/internal/core/gate"
	"github.com/sellos-g/web-gate/internal/pkg/metrics"
)

// PageHandler serves the page routes: it either redirects the browser or
// describes the view to render.
type PageHandler struct {
	log zerolog.Logger
}

func NewPageHandler(log zerolog.Logger) *PageHandler {
	return &PageHandler{log: log}
}

// Serve returns the handler of route. A navigation scheduled by the session
// (restore, login) wins over the route's own guard.
func (h *PageHandler) Serve(route gate.Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		tab, err := ctxTab(c)
		if err != nil {
			return err
		}
		path := c.Request().URL.Path

		if nav, ok := tab.Settle(); ok {
			metrics.GateDecisionsTotal.WithLabelValues(route.Access.String(), "redirect_policy").Inc()
			return c.Redirect(http.StatusFound, nav.To)
		}

		snap := tab.Container().Snapshot()
		d := route.Decide(snap, path)
		metrics.GateDecisionsTotal.WithLabelValues(route.Access.String(), d.Kind.String()).Inc()

		if d.IsRedirect() {
			h.log.Debug().Str("path", path).Str("to", d.Target).Str("decision", d.Kind.String()).Msg("page redirected")
			return c.Redirect(http.StatusFound, d.Target)
		}

		view := route.View
		if d.Kind == gate.DecisionLoading {
			view = "loading"
		}
		status := route.Status
		if status == 0 {
			status = http.StatusOK
		}
		return c.JSON(status, pageResponse{
			View:    view,
			Path:    path,
			Session: snap,
			Message: route.Message,
		})
	}
}
