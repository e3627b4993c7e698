package http

import (
	"net/http"

	"github.com/cptblues/team-visio/internal/domain"
	"github.com/cptblues/team-visio/internal/service"
	httpmw "github.com/cptblues/team-visio/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

// POST /halls
func (h *Handler) CreateHall(w http.ResponseWriter, r *http.Request) {
	var req CreateHallRequest
	if !decodeBody(w, r, &req) {
		return
	}

	opts := []domain.HallOption{domain.WithHallDescription(req.Description)}
	if req.RoomLimit > 0 {
		opts = append(opts, domain.WithRoomLimit(req.RoomLimit))
	}
	if len(req.InvitedUsers) > 0 {
		opts = append(opts, domain.WithInvitedUsers(req.InvitedUsers))
	}

	hall, err := h.hallSvc.CreateHall(r.Context(), httpmw.UserFromCtx(r.Context()), opts...)
	if err != nil {
		handleError(w, "handler.CreateHall:", err)
		return
	}

	h.toasts.Success("hall created")
	writeJSON(w, http.StatusCreated, hall)
}

// GET /halls
func (h *Handler) ListHalls(w http.ResponseWriter, r *http.Request) {
	halls, err := h.hallSvc.ListHalls(r.Context())
	if err != nil {
		handleError(w, "handler.ListHalls:", err)
		return
	}

	writeJSON(w, http.StatusOK, HallsListResponse{Items: halls})
}

// GET /halls/mine — холл текущего пользователя; 404, если нет
func (h *Handler) GetMyHall(w http.ResponseWriter, r *http.Request) {
	user := httpmw.UserFromCtx(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user"})
		return
	}

	hall, err := h.hallSvc.GetUserHall(r.Context(), user.ID)
	if err != nil {
		handleError(w, "handler.GetMyHall:", err)
		return
	}
	if hall == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
		return
	}

	writeJSON(w, http.StatusOK, hall)
}

// GET /halls/{id}
func (h *Handler) GetHall(w http.ResponseWriter, r *http.Request) {
	hall, err := h.hallSvc.GetHall(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, "handler.GetHall:", err)
		return
	}

	writeJSON(w, http.StatusOK, hall)
}

// PATCH /halls/{id}
func (h *Handler) UpdateHall(w http.ResponseWriter, r *http.Request) {
	var req UpdateHallRequest
	if !decodeBody(w, r, &req) {
		return
	}

	upd := service.HallUpdate{
		Description:  req.Description,
		RoomLimit:    req.RoomLimit,
		InvitedUsers: req.InvitedUsers,
	}
	if err := h.hallSvc.UpdateHall(r.Context(), httpmw.UserFromCtx(r.Context()), chi.URLParam(r, "id"), upd); err != nil {
		handleError(w, "handler.UpdateHall:", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DELETE /halls/{id}
func (h *Handler) DeleteHall(w http.ResponseWriter, r *http.Request) {
	if err := h.hallSvc.DeleteHall(r.Context(), httpmw.UserFromCtx(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleError(w, "handler.DeleteHall:", err)
		return
	}

	h.toasts.Info("hall deleted")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
