package ws

import (
	"sync"

	"github.com/cptblues/team-visio/internal/meet"
)

// Bridge гоняет команды/события виджета через WS: сервер командует,
// встроенный в страницу iframe отвечает событиями.
type Bridge struct {
	hub    *Hub
	userID string

	mu       sync.Mutex
	handlers map[string]meet.EventHandler
}

var _ meet.Widget = (*Bridge)(nil)

func (b *Bridge) AddEventListeners(handlers map[string]meet.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers == nil {
		b.handlers = make(map[string]meet.EventHandler, len(handlers))
	}
	for name, fn := range handlers {
		b.handlers[name] = fn
	}
}

func (b *Bridge) ExecuteCommand(name string, args ...any) error {
	return b.hub.SendToUser(b.userID, Message{
		Type:    TypeMeetCommand,
		Payload: MeetCommandPayload{Command: name, Args: args},
	})
}

func (b *Bridge) Dispose() error {
	return b.hub.SendToUser(b.userID, Message{Type: TypeMeetDispose})
}

// Deliver вызывает зарегистрированный обработчик события виджета
func (b *Bridge) Deliver(event string, payload map[string]any) {
	b.mu.Lock()
	fn := b.handlers[event]
	b.mu.Unlock()

	if fn != nil {
		fn(payload)
	}
}

// BridgeRegistry — мост на пользователя; фабрика отдает его контроллеру
type BridgeRegistry struct {
	hub *Hub

	mu      sync.Mutex
	bridges map[string]*Bridge
}

func NewBridgeRegistry(hub *Hub) *BridgeRegistry {
	return &BridgeRegistry{
		hub:     hub,
		bridges: make(map[string]*Bridge),
	}
}

// Factory возвращает WidgetFactory для конкретного пользователя.
// Создание виджета шлет meet_init: браузер собирает iframe с этими опциями.
func (r *BridgeRegistry) Factory(userID string) meet.WidgetFactory {
	return func(domain string, opts meet.Options) (meet.Widget, error) {
		b := r.bridge(userID)
		if err := r.hub.SendToUser(userID, Message{
			Type: TypeMeetInit,
			Payload: map[string]any{
				"domain":  domain,
				"options": opts,
			},
		}); err != nil {
			return nil, err
		}
		return b, nil
	}
}

func (r *BridgeRegistry) Deliver(userID, event string, payload map[string]any) {
	r.mu.Lock()
	b := r.bridges[userID]
	r.mu.Unlock()

	if b != nil {
		b.Deliver(event, payload)
	}
}

func (r *BridgeRegistry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bridges, userID)
}

func (r *BridgeRegistry) bridge(userID string) *Bridge {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bridges[userID]
	if !ok {
		b = &Bridge{hub: r.hub, userID: userID}
		r.bridges[userID] = b
	}
	return b
}
