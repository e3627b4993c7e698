package http

import (
	"net/http"

	"github.com/cptblues/team-visio/internal/meet"
	httpmw "github.com/cptblues/team-visio/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

// POST /meet/{roomID}/start
func (h *Handler) StartMeeting(w http.ResponseWriter, r *http.Request) {
	var req MeetStartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user := httpmw.UserFromCtx(r.Context())
	roomID := chi.URLParam(r, "roomID")

	// комната должна существовать до запуска конференции
	if _, err := h.roomSvc.GetRoom(r.Context(), roomID); err != nil {
		handleError(w, "handler.StartMeeting.GetRoom:", err)
		return
	}

	ctrl := h.meets.For(user.ID)
	err := ctrl.Start(r.Context(), roomID, meet.StartOptions{
		Container:  req.Container,
		AudioMuted: req.AudioMuted,
		VideoMuted: req.VideoMuted,
		Config:     req.Config,
		User:       user,
	})
	if err != nil {
		handleError(w, "handler.StartMeeting:", err)
		return
	}

	writeJSON(w, http.StatusOK, MeetStateResponse{
		State:        ctrl.State().String(),
		Session:      ctrl.Session(),
		Participants: ctrl.ListParticipants(),
	})
}

// POST /meet/dispose
func (h *Handler) DisposeMeeting(w http.ResponseWriter, r *http.Request) {
	user := httpmw.UserFromCtx(r.Context())
	h.meets.For(user.ID).Dispose()

	writeJSON(w, http.StatusOK, map[string]string{"status": "disposed"})
}

// GET /meet
func (h *Handler) MeetingState(w http.ResponseWriter, r *http.Request) {
	user := httpmw.UserFromCtx(r.Context())
	ctrl := h.meets.For(user.ID)

	writeJSON(w, http.StatusOK, MeetStateResponse{
		State:        ctrl.State().String(),
		Session:      ctrl.Session(),
		Participants: ctrl.ListParticipants(),
	})
}

// GET /meet/participants
func (h *Handler) MeetParticipants(w http.ResponseWriter, r *http.Request) {
	user := httpmw.UserFromCtx(r.Context())
	writeJSON(w, http.StatusOK, h.meets.For(user.ID).ListParticipants())
}

// POST /meet/commands/{name}
// audio/video принимают {"muted": bool}; остальные — переключатели
func (h *Handler) MeetCommand(w http.ResponseWriter, r *http.Request) {
	var req MeetCommandRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user := httpmw.UserFromCtx(r.Context())
	ctrl := h.meets.For(user.ID)

	var ok bool
	switch chi.URLParam(r, "name") {
	case "audio":
		ok = ctrl.SetAudioMuted(req.Muted)
	case "video":
		ok = ctrl.SetVideoMuted(req.Muted)
	case "screen-share":
		ok = ctrl.ToggleScreenShare()
	case "tile-view":
		ok = ctrl.ToggleTileView()
	case "filmstrip":
		ok = ctrl.ToggleFilmstrip()
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unknown command"})
		return
	}

	writeJSON(w, http.StatusOK, CommandResponse{OK: ok})
}
