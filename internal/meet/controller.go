package meet

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cptblues/team-visio/internal/domain"
)

type ControllerConfig struct {
	Domain     string
	RoomPrefix string
	Width      string
	Height     string
}

// StartOptions — переопределения вызывающего поверх базового конфига
type StartOptions struct {
	Container  string
	AudioMuted bool
	VideoMuted bool
	Config     map[string]any
	User       *domain.User
}

// Controller держит не более одного активного виджета.
// Ошибки команд и teardown-а виджета глотаются: чужие сбои здесь не чинятся.
type Controller struct {
	cfg     ControllerConfig
	loader  *ScriptLoader
	factory WidgetFactory
	now     func() time.Time

	mu           sync.Mutex
	widget       Widget
	session      domain.ConferenceSession
	participants map[string]domain.RemoteParticipant
}

func NewController(cfg ControllerConfig, loader *ScriptLoader, factory WidgetFactory) *Controller {
	if cfg.Width == "" {
		cfg.Width = "100%"
	}
	if cfg.Height == "" {
		cfg.Height = "100%"
	}

	return &Controller{
		cfg:          cfg,
		loader:       loader,
		factory:      factory,
		now:          time.Now,
		participants: make(map[string]domain.RemoteParticipant),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.widget != nil {
		return StateActive
	}
	return c.loader.State()
}

// RoomName — фиксированный префикс + идентификатор комнаты
func (c *Controller) RoomName(roomID string) string {
	return c.cfg.RoomPrefix + roomID
}

// Start: требует Ready/Active и контейнер; старый инстанс гасится первым
func (c *Controller) Start(ctx context.Context, roomID string, opts StartOptions) error {
	if opts.Container == "" {
		return domain.ErrNoContainer
	}

	if err := c.loader.EnsureLoaded(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	if c.widget != nil {
		c.disposeLocked()
	}

	wopts := Options{
		RoomName:                 c.RoomName(roomID),
		Container:                opts.Container,
		Width:                    c.cfg.Width,
		Height:                   c.cfg.Height,
		ConfigOverwrite:          mergeMaps(baseConfigOverwrite(), opts.Config),
		InterfaceConfigOverwrite: baseInterfaceConfigOverwrite(),
	}
	wopts.ConfigOverwrite["startWithAudioMuted"] = opts.AudioMuted
	wopts.ConfigOverwrite["startWithVideoMuted"] = opts.VideoMuted
	if opts.User != nil && opts.User.DisplayName != "" {
		wopts.UserInfo = &UserInfo{DisplayName: opts.User.DisplayName, Email: opts.User.Email}
	}

	w, err := c.factory(c.cfg.Domain, wopts)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", domain.ErrLoadFailed, err)
	}

	c.widget = w
	c.session = domain.ConferenceSession{
		Active:     true,
		RoomID:     roomID,
		AudioMuted: opts.AudioMuted,
		VideoMuted: opts.VideoMuted,
	}
	c.mu.Unlock()

	w.AddEventListeners(map[string]EventHandler{
		EventConferenceJoined:  c.onConferenceJoined,
		EventParticipantJoined: c.onParticipantJoined,
		EventParticipantLeft:   c.onParticipantLeft,
		EventAudioMuteChanged:  c.onAudioMuteChanged,
		EventVideoMuteChanged:  c.onVideoMuteChanged,
		EventReadyToClose:      func(map[string]any) { c.Dispose() },
	})

	slog.Info("conference started", "room", roomID, "conference", c.RoomName(roomID))
	return nil
}

// Dispose: Active→Ready; локальное состояние чистится при любом исходе teardown-а
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposeLocked()
}

func (c *Controller) disposeLocked() {
	w := c.widget

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("widget dispose panicked", "reason", r)
		}
		c.widget = nil
		c.session = domain.ConferenceSession{}
		c.participants = make(map[string]domain.RemoteParticipant)
	}()

	if w != nil {
		if err := w.Dispose(); err != nil {
			slog.Warn("widget dispose failed", slog.Any("err", err))
		}
	}
}

func (c *Controller) SetAudioMuted(muted bool) bool {
	c.mu.Lock()
	if c.widget == nil {
		c.mu.Unlock()
		return false
	}
	toggle := c.session.AudioMuted != muted
	w := c.widget
	c.mu.Unlock()

	if toggle && !c.execute(w, CommandToggleAudio) {
		return false
	}

	c.mu.Lock()
	c.session.AudioMuted = muted
	c.mu.Unlock()
	return true
}

func (c *Controller) SetVideoMuted(muted bool) bool {
	c.mu.Lock()
	if c.widget == nil {
		c.mu.Unlock()
		return false
	}
	toggle := c.session.VideoMuted != muted
	w := c.widget
	c.mu.Unlock()

	if toggle && !c.execute(w, CommandToggleVideo) {
		return false
	}

	c.mu.Lock()
	c.session.VideoMuted = muted
	c.mu.Unlock()
	return true
}

func (c *Controller) ToggleScreenShare() bool {
	return c.toggleFlag(CommandToggleShare, func(s *domain.ConferenceSession) {
		s.ScreenSharing = !s.ScreenSharing
	})
}

func (c *Controller) ToggleTileView() bool {
	return c.toggleFlag(CommandToggleTileView, func(s *domain.ConferenceSession) {
		s.TileView = !s.TileView
	})
}

func (c *Controller) ToggleFilmstrip() bool {
	return c.toggleFlag(CommandToggleFilmstrip, nil)
}

func (c *Controller) toggleFlag(command string, apply func(*domain.ConferenceSession)) bool {
	c.mu.Lock()
	if c.widget == nil {
		c.mu.Unlock()
		return false
	}
	w := c.widget
	c.mu.Unlock()

	if !c.execute(w, command) {
		return false
	}

	if apply != nil {
		c.mu.Lock()
		apply(&c.session)
		c.mu.Unlock()
	}
	return true
}

// execute глотает ошибки виджета; успех — только индикатор
func (c *Controller) execute(w Widget, command string, args ...any) bool {
	if err := w.ExecuteCommand(command, args...); err != nil {
		slog.Debug("widget command failed", "command", command, slog.Any("err", err))
		return false
	}
	return true
}

// ListParticipants — копия снапшота; пустой срез вне Active
func (c *Controller) ListParticipants() []domain.RemoteParticipant {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.RemoteParticipant, 0, len(c.participants))
	for _, p := range c.participants {
		out = append(out, p)
	}
	return out
}

func (c *Controller) Session() domain.ConferenceSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Controller) onConferenceJoined(map[string]any) {
	slog.Debug("conference joined", "room", c.Session().RoomID)
}

func (c *Controller) onParticipantJoined(payload map[string]any) {
	id, _ := payload["id"].(string)
	if id == "" {
		return
	}
	name, _ := payload["displayName"].(string)

	c.mu.Lock()
	c.participants[id] = domain.RemoteParticipant{
		ID:          id,
		DisplayName: name,
		JoinedAt:    c.now(),
	}
	c.mu.Unlock()
}

func (c *Controller) onParticipantLeft(payload map[string]any) {
	id, _ := payload["id"].(string)

	c.mu.Lock()
	delete(c.participants, id)
	c.mu.Unlock()
}

func (c *Controller) onAudioMuteChanged(payload map[string]any) {
	muted, _ := payload["muted"].(bool)

	c.mu.Lock()
	c.session.AudioMuted = muted
	c.mu.Unlock()
}

func (c *Controller) onVideoMuteChanged(payload map[string]any) {
	muted, _ := payload["muted"].(bool)

	c.mu.Lock()
	c.session.VideoMuted = muted
	c.mu.Unlock()
}
