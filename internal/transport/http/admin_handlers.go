package http

import (
	"net/http"

	httpmw "github.com/cptblues/team-visio/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

// GET /admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	user := httpmw.UserFromCtx(r.Context())
	if user == nil || !user.IsAdmin {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		return
	}

	users, err := h.adminSvc.ListUsers(r.Context())
	if err != nil {
		handleError(w, "handler.ListUsers:", err)
		return
	}

	resp := UsersListResponse{Items: make([]UserItem, 0, len(users))}
	for i := range users {
		resp.Items = append(resp.Items, toUserItem(&users[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// PUT /admin/users/{id}/admin
func (h *Handler) SetAdminStatus(w http.ResponseWriter, r *http.Request) {
	var req AdminStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	actor := httpmw.UserFromCtx(r.Context())
	if err := h.adminSvc.SetAdminStatus(r.Context(), actor, chi.URLParam(r, "id"), req.IsAdmin); err != nil {
		handleError(w, "handler.SetAdminStatus:", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// POST /admin/self — только вне production
func (h *Handler) MakeSelfAdmin(w http.ResponseWriter, r *http.Request) {
	actor := httpmw.UserFromCtx(r.Context())
	if err := h.adminSvc.MakeSelfAdmin(r.Context(), actor); err != nil {
		handleError(w, "handler.MakeSelfAdmin:", err)
		return
	}

	h.toasts.Warning("self-admin granted")
	writeJSON(w, http.StatusOK, map[string]string{"status": "admin"})
}
