package domain

import "time"

// ConferenceSession — эфемерное состояние виджета; не персистится
type ConferenceSession struct {
	Active        bool   `json:"active"`
	RoomID        string `json:"roomId,omitempty"`
	AudioMuted    bool   `json:"audioMuted"`
	VideoMuted    bool   `json:"videoMuted"`
	ScreenSharing bool   `json:"screenSharing"`
	TileView      bool   `json:"tileView"`
}

type RemoteParticipant struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	JoinedAt    time.Time `json:"joinedAt"`
}
