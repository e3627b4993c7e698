package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cptblues/team-visio/internal/auth"
	"github.com/cptblues/team-visio/internal/domain"
	"github.com/cptblues/team-visio/internal/meet"
	"github.com/cptblues/team-visio/internal/service"
	"github.com/cptblues/team-visio/internal/toast"
)

type Handler struct {
	authSvc  *auth.Service
	roomSvc  *service.RoomService
	hallSvc  *service.HallService
	adminSvc *service.AdminService
	meets    *meet.Registry
	toasts   *toast.Store
}

func NewHandler(authSvc *auth.Service, room *service.RoomService, hall *service.HallService, admin *service.AdminService, meets *meet.Registry, toasts *toast.Store) *Handler {
	return &Handler{
		authSvc:  authSvc,
		roomSvc:  room,
		hallSvc:  hall,
		adminSvc: admin,
		meets:    meets,
		toasts:   toasts,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleError переводит доменные ошибки в статусы; остальное — 500 с логом
func handleError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrAuthRequired),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrSessionExpired):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrRoomFull),
		errors.Is(err, domain.ErrHallExists),
		errors.Is(err, auth.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrNoContainer):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrLoadFailed):
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrBackend):
		// текст ошибки БД наружу не отдаем
		slog.Error(op, slog.Any("err", err))
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable"})
	default:
		slog.Error(op, slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return false
	}
	return true
}
