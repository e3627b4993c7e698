package http

import (
	"net/http"

	httpmw "github.com/cptblues/team-visio/internal/transport/http/middleware"
)

// POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sess, err := h.authSvc.Register(r.Context(), req.Email, req.Password, req.DisplayName, false)
	if err != nil {
		handleError(w, "handler.Register:", err)
		return
	}

	h.toasts.Success("account created")
	writeJSON(w, http.StatusCreated, SessionResponse{
		User:         toUserItem(sess.User),
		AccessToken:  sess.AccessToken,
		SessionToken: sess.SessionToken,
		ExpiresIn:    sess.ExpiresIn,
	})
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sess, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, "handler.Login:", err)
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		User:         toUserItem(sess.User),
		AccessToken:  sess.AccessToken,
		SessionToken: sess.SessionToken,
		ExpiresIn:    sess.ExpiresIn,
	})
}

// POST /auth/logout — гасит сессию и виджет конференции пользователя
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user := httpmw.UserFromCtx(r.Context())
	if user != nil {
		h.meets.Drop(user.ID)
	}

	if err := h.authSvc.Logout(r.Context(), req.SessionToken); err != nil {
		handleError(w, "handler.Logout:", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := httpmw.UserFromCtx(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user"})
		return
	}

	writeJSON(w, http.StatusOK, toUserItem(user))
}
