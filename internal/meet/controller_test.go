package meet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cptblues/team-visio/internal/domain"
)

type fakeWidget struct {
	mu         sync.Mutex
	commands   []string
	handlers   map[string]EventHandler
	executeErr error
	disposeErr error
	disposed   bool
}

func (f *fakeWidget) AddEventListeners(handlers map[string]EventHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = handlers
}

func (f *fakeWidget) ExecuteCommand(name string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.executeErr != nil {
		return f.executeErr
	}
	f.commands = append(f.commands, name)
	return nil
}

func (f *fakeWidget) Dispose() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disposed = true
	return f.disposeErr
}

func (f *fakeWidget) fire(event string, payload map[string]any) {
	f.mu.Lock()
	fn := f.handlers[event]
	f.mu.Unlock()
	if fn != nil {
		fn(payload)
	}
}

func (f *fakeWidget) executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	copy(out, f.commands)
	return out
}

func newTestLoader(t *testing.T) *ScriptLoader {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("var JitsiMeetExternalAPI = function(){};"))
	}))
	t.Cleanup(srv.Close)

	return NewScriptLoader(LoaderConfig{Domain: "example.org", BaseURL: srv.URL})
}

func newTestController(t *testing.T) (*Controller, *fakeWidget) {
	t.Helper()
	w := &fakeWidget{}
	factory := func(domain string, opts Options) (Widget, error) {
		return w, nil
	}
	cfg := ControllerConfig{Domain: "example.org", RoomPrefix: "team-visio-"}

	return NewController(cfg, newTestLoader(t), factory), w
}

func TestController_StartRequiresContainer(t *testing.T) {
	c, _ := newTestController(t)

	err := c.Start(context.Background(), "r1", StartOptions{})
	if !errors.Is(err, domain.ErrNoContainer) {
		t.Fatalf("expected ErrNoContainer, got %v", err)
	}
	// ничего не загружалось и не запускалось
	if got := c.State(); got != StateUnloaded {
		t.Fatalf("state = %v", got)
	}
}

func TestController_StartAndDispose(t *testing.T) {
	c, w := newTestController(t)

	err := c.Start(context.Background(), "r1", StartOptions{
		Container:  "#meet",
		AudioMuted: true,
		User:       &domain.User{ID: "u1", DisplayName: "Alice", Email: "a@b.c"},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if c.State() != StateActive {
		t.Fatalf("state = %v", c.State())
	}
	sess := c.Session()
	if !sess.Active || sess.RoomID != "r1" || !sess.AudioMuted || sess.VideoMuted {
		t.Fatalf("session = %+v", sess)
	}
	if got := c.RoomName("r1"); got != "team-visio-r1" {
		t.Fatalf("room name = %q", got)
	}

	c.Dispose()
	if !w.disposed {
		t.Fatal("widget not disposed")
	}
	if c.State() != StateReady {
		t.Fatalf("state after dispose = %v", c.State())
	}
	if c.Session().Active {
		t.Fatal("session survived dispose")
	}
}

func TestController_FactoryFailure(t *testing.T) {
	factory := func(domain string, opts Options) (Widget, error) {
		return nil, errors.New("no container element")
	}
	c := NewController(ControllerConfig{RoomPrefix: "p-"}, newTestLoader(t), factory)

	err := c.Start(context.Background(), "r1", StartOptions{Container: "#meet"})
	if !errors.Is(err, domain.ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
	if c.State() == StateActive {
		t.Fatal("controller active after factory failure")
	}
}

func TestController_CommandsRequireActive(t *testing.T) {
	c, _ := newTestController(t)

	if c.SetAudioMuted(true) {
		t.Fatal("SetAudioMuted should fail without widget")
	}
	if c.SetVideoMuted(true) {
		t.Fatal("SetVideoMuted should fail without widget")
	}
	if c.ToggleScreenShare() || c.ToggleTileView() || c.ToggleFilmstrip() {
		t.Fatal("toggles should fail without widget")
	}
}

func TestController_MuteTogglesOnlyOnChange(t *testing.T) {
	c, w := newTestController(t)

	if err := c.Start(context.Background(), "r1", StartOptions{Container: "#meet"}); err != nil {
		t.Fatal(err)
	}

	if !c.SetAudioMuted(true) {
		t.Fatal("SetAudioMuted(true) failed")
	}
	// состояние уже требуемое — команда не шлется
	if !c.SetAudioMuted(true) {
		t.Fatal("repeat SetAudioMuted(true) failed")
	}
	if got := w.executed(); len(got) != 1 || got[0] != CommandToggleAudio {
		t.Fatalf("commands = %v", got)
	}

	if !c.SetAudioMuted(false) {
		t.Fatal("SetAudioMuted(false) failed")
	}
	if got := w.executed(); len(got) != 2 {
		t.Fatalf("commands = %v", got)
	}
}

func TestController_CommandErrorSwallowed(t *testing.T) {
	c, w := newTestController(t)
	if err := c.Start(context.Background(), "r1", StartOptions{Container: "#meet"}); err != nil {
		t.Fatal(err)
	}

	w.executeErr = errors.New("iframe gone")
	if c.SetAudioMuted(true) {
		t.Fatal("expected false on widget error")
	}
	if c.ToggleTileView() {
		t.Fatal("expected false on widget error")
	}
	// контроллер остаётся активным
	if c.State() != StateActive {
		t.Fatalf("state = %v", c.State())
	}
	if c.Session().AudioMuted {
		t.Fatal("flag updated despite failed command")
	}
}

func TestController_ParticipantEvents(t *testing.T) {
	c, w := newTestController(t)
	if err := c.Start(context.Background(), "r1", StartOptions{Container: "#meet"}); err != nil {
		t.Fatal(err)
	}

	w.fire(EventParticipantJoined, map[string]any{"id": "p1", "displayName": "Bob"})
	w.fire(EventParticipantJoined, map[string]any{"id": "p2", "displayName": "Eve"})
	w.fire(EventParticipantJoined, map[string]any{"displayName": "no id, ignored"})

	ps := c.ListParticipants()
	if len(ps) != 2 {
		t.Fatalf("participants = %v", ps)
	}

	w.fire(EventParticipantLeft, map[string]any{"id": "p1"})
	if ps := c.ListParticipants(); len(ps) != 1 || ps[0].ID != "p2" {
		t.Fatalf("participants after leave = %v", ps)
	}

	w.fire(EventAudioMuteChanged, map[string]any{"muted": true})
	if !c.Session().AudioMuted {
		t.Fatal("audio mute event not applied")
	}
}

func TestController_ReadyToCloseDisposes(t *testing.T) {
	c, w := newTestController(t)
	if err := c.Start(context.Background(), "r1", StartOptions{Container: "#meet"}); err != nil {
		t.Fatal(err)
	}

	w.fire(EventReadyToClose, nil)

	if c.State() != StateReady {
		t.Fatalf("state = %v", c.State())
	}
	if !w.disposed {
		t.Fatal("widget not disposed")
	}
}

func TestController_DisposeClearsOnWidgetError(t *testing.T) {
	c, w := newTestController(t)
	if err := c.Start(context.Background(), "r1", StartOptions{Container: "#meet"}); err != nil {
		t.Fatal(err)
	}

	w.fire(EventParticipantJoined, map[string]any{"id": "p1"})
	w.disposeErr = errors.New("already gone")

	c.Dispose()

	if c.State() != StateReady {
		t.Fatalf("state = %v", c.State())
	}
	if len(c.ListParticipants()) != 0 {
		t.Fatal("participants survived dispose")
	}
	if c.Session().Active {
		t.Fatal("session survived dispose")
	}
}

type panickyWidget struct{ fakeWidget }

func (p *panickyWidget) Dispose() error { panic("widget exploded") }

func TestController_DisposeClearsOnPanic(t *testing.T) {
	w := &panickyWidget{}
	factory := func(domain string, opts Options) (Widget, error) { return w, nil }
	c := NewController(ControllerConfig{RoomPrefix: "p-"}, newTestLoader(t), factory)

	if err := c.Start(context.Background(), "r1", StartOptions{Container: "#meet"}); err != nil {
		t.Fatal(err)
	}

	c.Dispose()

	if c.State() != StateReady {
		t.Fatalf("state = %v", c.State())
	}
	if c.Session().Active {
		t.Fatal("session survived panicking dispose")
	}
}
