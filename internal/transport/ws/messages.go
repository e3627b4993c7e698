package ws

// Типы сообщений WS-канала
const (
	TypeSnapshot    = "snapshot"     // server→client: снапшот коллекции
	TypeToast       = "toast"        // server→client: активные уведомления
	TypeMeetInit    = "meet_init"    // server→client: собрать виджет с опциями
	TypeMeetCommand = "meet_command" // server→client: команда виджету
	TypeMeetDispose = "meet_dispose" // server→client: погасить виджет
	TypeMeetEvent   = "meet_event"   // client→server: событие виджета
)

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type SnapshotPayload struct {
	Collection string `json:"collection"`
	Items      any    `json:"items"`
}

type MeetCommandPayload struct {
	Command string `json:"command"`
	Args    []any  `json:"args,omitempty"`
}

type MeetEventPayload struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}
