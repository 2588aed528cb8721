package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sellos-g/web-gate/internal/core/domain"
	"github.com/sellos-g/web-gate/internal/core/gate"
	"github.com/sellos-g/web-gate/internal/core/ports"
)

// SessionHandler drives the session container of the caller's browser tab.
type SessionHandler struct {
	identity ports.IdentityAPI
	log      zerolog.Logger
}

func NewSessionHandler(identity ports.IdentityAPI, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{identity: identity, log: log}
}

// Get returns the current session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Param        X-Current-Path  header    string  false  "Frontend location"
// @Success      200             {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	tab, err := ctxTab(c)
	if err != nil {
		return err
	}
	return h.respond(c, tab, http.StatusOK, "")
}

// Login authenticates against the identity API and starts the tab session.
// Rejected credentials leave the session unauthenticated.
//
// @Summary      Log in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        X-Current-Path  header    string        false  "Frontend location"
// @Param        body            body      loginRequest  true   "Credentials"
// @Success      200             {object}  sessionResponse
// @Failure      400             {object}  map[string]string
// @Failure      401             {object}  sessionResponse
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	tab, err := ctxTab(c)
	if err != nil {
		return err
	}

	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.identity.Login(c.Request().Context(), req.Email, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		_, msg, _ := StatusFor(err)
		return h.respond(c, tab, http.StatusUnauthorized, msg)
	}
	if err != nil {
		return respondError(c, err)
	}

	tab.Container().Login(c.Request().Context(), user, token)
	return h.respond(c, tab, http.StatusOK, "")
}

// Logout ends the tab session and revokes its token.
//
// @Summary      Log out
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	tab, err := ctxTab(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if token := tab.Container().Snapshot().Token; token != "" {
		if err := h.identity.Logout(ctx, token); err != nil {
			h.log.Warn().Err(err).Msg("token revocation failed")
		}
	}

	tab.Container().Logout(ctx)
	return h.respond(c, tab, http.StatusOK, "")
}

// UpdateProfile edits the logged-in user's profile and merges the result into
// the session.
//
// @Summary      Update profile
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        X-Current-Path  header    string  false  "Frontend location"
// @Param        body            body      object  true   "Profile fields"
// @Success      200             {object}  sessionResponse
// @Failure      400             {object}  map[string]string
// @Failure      401             {object}  sessionResponse
// @Router       /session/profile [patch]
func (h *SessionHandler) UpdateProfile(c echo.Context) error {
	tab, err := ctxTab(c)
	if err != nil {
		return err
	}

	snap := tab.Container().Snapshot()
	if !snap.IsAuthenticated || snap.User == nil {
		_, msg, _ := StatusFor(domain.ErrNotAuthenticated)
		return h.respond(c, tab, http.StatusUnauthorized, msg)
	}

	var patch map[string]any
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()
	user, token, err := h.identity.UpdateProfile(ctx, snap.User.ID(), patch)
	if err != nil {
		return respondError(c, err)
	}

	if token != "" {
		if token != snap.Token {
			if err := h.identity.Logout(ctx, snap.Token); err != nil {
				h.log.Warn().Err(err).Msg("replaced token revocation failed")
			}
		}
		tab.Container().Login(ctx, user, token)
	} else {
		tab.Container().UpdateIdentity(ctx, user.Fields())
	}
	return h.respond(c, tab, http.StatusOK, "")
}

// respond settles the tab and writes its session with any pending redirect.
func (h *SessionHandler) respond(c echo.Context, tab *gate.Tab, status int, errMsg string) error {
	resp := sessionResponse{Error: errMsg}
	if nav, ok := tab.Settle(); ok {
		resp.Redirect = nav.To
	}
	resp.Session = tab.Container().Snapshot()
	return c.JSON(status, resp)
}
