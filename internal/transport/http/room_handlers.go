package http

import (
	"errors"
	"net/http"

	"github.com/cptblues/team-visio/internal/domain"
	"github.com/cptblues/team-visio/internal/service"
	httpmw "github.com/cptblues/team-visio/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}

	opts := []domain.RoomOption{domain.WithDescription(req.Description)}
	if req.IsPublic != nil {
		opts = append(opts, domain.WithVisibility(*req.IsPublic))
	}
	if req.MaxParticipants > 0 {
		opts = append(opts, domain.WithMaxParticipants(req.MaxParticipants))
	}

	room, err := h.roomSvc.CreateRoom(r.Context(), httpmw.UserFromCtx(r.Context()), req.Name, opts...)
	if err != nil {
		handleError(w, "handler.CreateRoom:", err)
		return
	}

	h.toasts.Success("room created")
	writeJSON(w, http.StatusCreated, room)
}

// GET /rooms?public=true
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	user := httpmw.UserFromCtx(r.Context())
	publicOnly := r.URL.Query().Get("public") == "true" || user == nil || !user.IsAdmin

	rooms, err := h.roomSvc.ListRooms(r.Context(), publicOnly)
	if err != nil {
		handleError(w, "handler.ListRooms:", err)
		return
	}

	writeJSON(w, http.StatusOK, RoomsListResponse{Items: rooms})
}

// GET /rooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomSvc.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, "handler.GetRoom:", err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// GET /rooms/{id}/participants
func (h *Handler) RoomParticipants(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomSvc.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, "handler.RoomParticipants:", err)
		return
	}

	writeJSON(w, http.StatusOK, room.Participants)
}

// PATCH /rooms/{id}
func (h *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoomRequest
	if !decodeBody(w, r, &req) {
		return
	}

	upd := service.RoomUpdate{
		Name:            req.Name,
		Description:     req.Description,
		IsPublic:        req.IsPublic,
		MaxParticipants: req.MaxParticipants,
	}
	if err := h.roomSvc.UpdateRoom(r.Context(), httpmw.UserFromCtx(r.Context()), chi.URLParam(r, "id"), upd); err != nil {
		handleError(w, "handler.UpdateRoom:", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DELETE /rooms/{id}
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.roomSvc.DeleteRoom(r.Context(), httpmw.UserFromCtx(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleError(w, "handler.DeleteRoom:", err)
		return
	}

	h.toasts.Info("room deleted")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// POST /rooms/{id}/join
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.roomSvc.JoinRoom(r.Context(), httpmw.UserFromCtx(r.Context()), id); err != nil {
		if errors.Is(err, domain.ErrRoomFull) {
			h.toasts.Warning("room is full")
		}
		handleError(w, "handler.JoinRoom:", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "joined", "roomId": id})
}

// POST /rooms/{id}/leave
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.roomSvc.LeaveRoom(r.Context(), httpmw.UserFromCtx(r.Context()), id); err != nil {
		handleError(w, "handler.LeaveRoom:", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "left", "roomId": id})
}
