package ws

import (
	"errors"
	"sync"
)

var ErrNotConnected = errors.New("ws: user has no active connection")

type Conn interface {
	Send(msg Message) error
	Close() error
	UserID() string
}

type Hub struct {
	mu    sync.RWMutex
	users map[string]map[Conn]struct{} // userID -> set of connections
}

func NewHub() *Hub {
	return &Hub{users: make(map[string]map[Conn]struct{})}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cs, ok := h.users[c.UserID()]
	if !ok {
		cs = make(map[Conn]struct{})
		h.users[c.UserID()] = cs
	}
	cs[c] = struct{}{}
}

func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cs, ok := h.users[c.UserID()]; ok {
		delete(cs, c)
		if len(cs) == 0 {
			delete(h.users, c.UserID())
		}
	}
}

// SendToUser — во все соединения пользователя; ошибка только когда их нет
func (h *Hub) SendToUser(userID string, msg Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cs, ok := h.users[userID]
	if !ok || len(cs) == 0 {
		return ErrNotConnected
	}
	for c := range cs {
		_ = c.Send(msg) // best-effort
	}
	return nil
}

func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, cs := range h.users {
		for c := range cs {
			_ = c.Send(msg) // best-effort
		}
	}
}
