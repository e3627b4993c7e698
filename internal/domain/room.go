package domain

import (
	"strings"
	"time"
)

type Participant struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	JoinedAt    time.Time `json:"joinedAt"`
}

type Room struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	IsPublic        bool          `json:"isPublic"`
	CreatedBy       string        `json:"createdBy"`
	MaxParticipants int           `json:"maxParticipants,omitempty"` // 0 — без лимита
	Participants    []Participant `json:"participants"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt,omitzero"`
}

func NewRoom(name, createdBy string, opts ...RoomOption) *Room {
	r := &Room{
		Name:         strings.TrimSpace(name),
		IsPublic:     true,
		CreatedBy:    createdBy,
		Participants: []Participant{},
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Room) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// IsFull — true, если лимит задан и достигнут
func (r *Room) IsFull() bool {
	return r.MaxParticipants > 0 && len(r.Participants) >= r.MaxParticipants
}

func (r *Room) CanModify(u *User) bool {
	if u == nil {
		return false
	}
	return r.CreatedBy == u.ID || u.IsAdmin
}

// Options конструктора
type RoomOption func(*Room)

func WithDescription(d string) RoomOption {
	return func(r *Room) { r.Description = strings.TrimSpace(d) }
}

func WithVisibility(isPublic bool) RoomOption {
	return func(r *Room) { r.IsPublic = isPublic }
}

func WithMaxParticipants(max int) RoomOption {
	return func(r *Room) {
		if max > 0 {
			r.MaxParticipants = max
		}
	}
}
