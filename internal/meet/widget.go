package meet

// Имя конструктора, которое внешний скрипт обязан объявить
const ConstructorName = "JitsiMeetExternalAPI"

// События виджета
const (
	EventConferenceJoined  = "videoConferenceJoined"
	EventParticipantJoined = "participantJoined"
	EventParticipantLeft   = "participantLeft"
	EventAudioMuteChanged  = "audioMuteStatusChanged"
	EventVideoMuteChanged  = "videoMuteStatusChanged"
	EventReadyToClose      = "readyToClose"
)

// Команды виджета
const (
	CommandToggleAudio     = "toggleAudio"
	CommandToggleVideo     = "toggleVideo"
	CommandToggleShare     = "toggleShareScreen"
	CommandToggleTileView  = "toggleTileView"
	CommandToggleFilmstrip = "toggleFilmStrip"
)

type EventHandler func(payload map[string]any)

// Widget — внешний чёрный ящик; ошибки его команд не считаются фатальными
type Widget interface {
	AddEventListeners(handlers map[string]EventHandler)
	ExecuteCommand(name string, args ...any) error
	Dispose() error
}

type UserInfo struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// Options собираются из базового конфига, переопределений вызывающего и identity
type Options struct {
	RoomName                 string         `json:"roomName"`
	Container                string         `json:"parentNode"`
	Width                    string         `json:"width"`
	Height                   string         `json:"height"`
	ConfigOverwrite          map[string]any `json:"configOverwrite,omitempty"`
	InterfaceConfigOverwrite map[string]any `json:"interfaceConfigOverwrite,omitempty"`
	UserInfo                 *UserInfo      `json:"userInfo,omitempty"`
}

// WidgetFactory создаёт инстанс после готовности скрипта
type WidgetFactory func(domain string, opts Options) (Widget, error)

// baseConfigOverwrite — дефолты конференции, как в исходном приложении
func baseConfigOverwrite() map[string]any {
	return map[string]any{
		"startWithAudioMuted": false,
		"startWithVideoMuted": false,
		"prejoinPageEnabled":  false,
		"disableDeepLinking":  true,
		"enableWelcomePage":   false,
		"defaultLayout":       "tileview",
		"resolution":          720,
	}
}

func baseInterfaceConfigOverwrite() map[string]any {
	return map[string]any{
		"SHOW_JITSI_WATERMARK":    false,
		"MOBILE_APP_PROMO":        false,
		"VERTICAL_FILMSTRIP":      true,
		"TILE_VIEW_MAX_COLUMNS":   5,
		"FILM_STRIP_MAX_HEIGHT":   120,
		"HIDE_INVITE_MORE_HEADER": true,
	}
}

func mergeMaps(base, over map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
