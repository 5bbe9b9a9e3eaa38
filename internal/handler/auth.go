package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/roomshare/internal/auth"
	"github.com/dukerupert/roomshare/internal/identity"
	"github.com/dukerupert/roomshare/internal/middleware"
	"github.com/dukerupert/roomshare/internal/model"
)

type AuthHandler struct {
	identity *identity.Provider
	logger   *slog.Logger
}

func NewAuthHandler(p *identity.Provider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{identity: p, logger: logger.With("component", "auth")}
}

type sessionResponse struct {
	User      *model.User `json:"user,omitempty"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, sess *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	u, sess, err := h.identity.SignUp(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		writeError(w, h.logger, "failed to sign up", err)
		return
	}

	setSessionCookie(w, r, sess)
	writeJSON(w, http.StatusCreated, sessionResponse{User: u, Token: sess.Token, ExpiresAt: sess.ExpiresAt})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, "failed to sign in", err)
		return
	}
	u, err := h.identity.CurrentProfile(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.logger, "failed to load profile", err)
		return
	}

	setSessionCookie(w, r, sess)
	writeJSON(w, http.StatusOK, sessionResponse{User: u, Token: sess.Token, ExpiresAt: sess.ExpiresAt})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if err := h.identity.SignOut(r.Context(), ac.Token); err != nil {
		writeError(w, h.logger, "failed to sign out", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.identity.RefreshProfile(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, "failed to load profile", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"full_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.identity.UpdateName(r.Context(), req.FullName)
	if err != nil {
		writeError(w, h.logger, "failed to update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
