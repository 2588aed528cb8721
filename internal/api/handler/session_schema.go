package handler

import "github.com/sellos-g/web-gate/internal/core/gate"

// sessionResponse is returned by every session API call. Redirect is where
// the frontend must navigate (history replace) after applying the response.
type sessionResponse struct {
	Session  gate.Session `json:"session"`
	Redirect string       `json:"redirect,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// pageResponse describes the page the frontend must render.
type pageResponse struct {
	View    string       `json:"view"`
	Path    string       `json:"path"`
	Session gate.Session `json:"session"`
	Message string       `json:"message,omitempty"`
}
