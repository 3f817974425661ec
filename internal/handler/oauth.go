package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Hacka25/athenian-trading/internal/auth"
)

// Authorizer runs the Google authorization code flow.
type Authorizer interface {
	Authorized() bool
	AuthCodeURL() string
	Exchange(ctx context.Context, state, code string) error
}

// OAuthHandler handles spreadsheet authorization.
type OAuthHandler struct {
	authz Authorizer
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(authz Authorizer) *OAuthHandler {
	return &OAuthHandler{authz: authz}
}

// Status handles GET /oauth/status.
func (h *OAuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]bool{"authorized": h.authz.Authorized()})
}

// Authorize handles GET /oauth/authorize by redirecting to the consent page.
func (h *OAuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.authz.AuthCodeURL(), http.StatusFound)
}

// Callback handles GET /oauth/callback.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if msg := q.Get("error"); msg != "" {
		WriteError(w, http.StatusBadRequest, "authorization_denied", msg)
		return
	}
	code := q.Get("code")
	if code == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	if err := h.authz.Exchange(r.Context(), q.Get("state"), code); err != nil {
		if errors.Is(err, auth.ErrInvalidState) {
			WriteError(w, http.StatusBadRequest, "invalid_state", "Authorization state is unknown or expired")
			return
		}
		WriteError(w, http.StatusBadGateway, "exchange_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"authorized": true})
}
