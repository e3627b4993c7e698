package http

import (
	"time"

	"github.com/cptblues/team-visio/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LogoutRequest struct {
	SessionToken string `json:"sessionToken"`
}

type SessionResponse struct {
	User         UserItem `json:"user"`
	AccessToken  string   `json:"accessToken"`
	SessionToken string   `json:"sessionToken"`
	ExpiresIn    int64    `json:"expiresIn"`
}

type UserItem struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	IsAdmin     bool      `json:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toUserItem(u *domain.User) UserItem {
	return UserItem{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
	}
}

type CreateRoomRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	IsPublic        *bool  `json:"isPublic"`
	MaxParticipants int    `json:"maxParticipants"`
}

type UpdateRoomRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	IsPublic        *bool   `json:"isPublic"`
	MaxParticipants *int    `json:"maxParticipants"`
}

type RoomsListResponse struct {
	Items []domain.Room `json:"items"`
}

type CreateHallRequest struct {
	Description  string   `json:"description"`
	RoomLimit    int      `json:"roomLimit"`
	InvitedUsers []string `json:"invitedUsers"`
}

type UpdateHallRequest struct {
	Description  *string   `json:"description"`
	RoomLimit    *int      `json:"roomLimit"`
	InvitedUsers *[]string `json:"invitedUsers"`
}

type HallsListResponse struct {
	Items []domain.Hall `json:"items"`
}

type AdminStatusRequest struct {
	IsAdmin bool `json:"isAdmin"`
}

type UsersListResponse struct {
	Items []UserItem `json:"items"`
}

type MeetStartRequest struct {
	Container  string         `json:"container"`
	AudioMuted bool           `json:"audioMuted"`
	VideoMuted bool           `json:"videoMuted"`
	Config     map[string]any `json:"config"`
}

type MeetCommandRequest struct {
	Muted bool `json:"muted"`
}

type MeetStateResponse struct {
	State        string                     `json:"state"`
	Session      domain.ConferenceSession   `json:"session"`
	Participants []domain.RemoteParticipant `json:"participants"`
}

type CommandResponse struct {
	OK bool `json:"ok"`
}
