package domain

import (
	"strings"
	"time"
)

const DefaultHallRoomLimit = 3

type Hall struct {
	ID           string    `json:"id"`
	Description  string    `json:"description,omitempty"`
	CreatorID    string    `json:"creatorId"`
	RoomLimit    int       `json:"roomLimit"`
	InvitedUsers []string  `json:"invitedUsers"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

func NewHall(creatorID string, opts ...HallOption) *Hall {
	h := &Hall{
		CreatorID:    creatorID,
		RoomLimit:    DefaultHallRoomLimit,
		InvitedUsers: []string{},
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Hall) CanModify(u *User) bool {
	if u == nil {
		return false
	}
	return h.CreatorID == u.ID || u.IsAdmin
}

// Options конструктора
type HallOption func(*Hall)

func WithHallDescription(d string) HallOption {
	return func(h *Hall) { h.Description = strings.TrimSpace(d) }
}

func WithRoomLimit(limit int) HallOption {
	return func(h *Hall) {
		if limit > 0 {
			h.RoomLimit = limit
		}
	}
}

func WithInvitedUsers(ids []string) HallOption {
	return func(h *Hall) {
		if len(ids) > 0 {
			h.InvitedUsers = ids
		}
	}
}
