package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cptblues/team-visio/internal/docstore"
	"github.com/cptblues/team-visio/internal/domain"
	"github.com/cptblues/team-visio/internal/toast"

	"github.com/gorilla/websocket"
)

type AuthResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

type RoomWatcher interface {
	WatchRooms(ctx context.Context, publicOnly bool, fn func([]domain.Room)) (docstore.Unsubscribe, error)
}

type HallWatcher interface {
	WatchHalls(ctx context.Context, fn func([]domain.Hall)) (docstore.Unsubscribe, error)
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	bridges  *BridgeRegistry
	authSvc  AuthResolver
	roomSvc  RoomWatcher
	hallSvc  HallWatcher

	pingEvery time.Duration
}

func NewServer(hub *Hub, bridges *BridgeRegistry, authSvc AuthResolver, roomSvc RoomWatcher, hallSvc HallWatcher, toasts *toast.Store) *Server {
	s := &Server{
		hub:     hub,
		bridges: bridges,
		authSvc: authSvc,
		roomSvc: roomSvc,
		hallSvc: hallSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}

	// серверные уведомления уходят всем активным соединениям
	if toasts != nil {
		toasts.Subscribe(func(items []toast.Toast) {
			hub.Broadcast(Message{Type: TypeToast, Payload: items})
		})
	}

	return s
}

// WS endpoint: GET /ws?access_token=...&channels=rooms,halls
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	token := strings.TrimSpace(q.Get("access_token"))
	user, err := s.authSvc.Resolve(r.Context(), token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	channels := map[string]bool{"rooms": true, "halls": true}
	if raw := strings.TrimSpace(q.Get("channels")); raw != "" {
		channels = map[string]bool{}
		for _, ch := range strings.Split(raw, ",") {
			channels[strings.TrimSpace(ch)] = true
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, user.ID)
	s.hub.Add(c)

	var unsubs []docstore.Unsubscribe
	if channels["rooms"] {
		unsub, err := s.roomSvc.WatchRooms(r.Context(), !user.IsAdmin, func(rooms []domain.Room) {
			_ = c.Send(Message{Type: TypeSnapshot, Payload: SnapshotPayload{Collection: "rooms", Items: rooms}})
		})
		if err != nil {
			slog.Warn("ws watch rooms failed", "user", user.ID, "err", err)
		} else {
			unsubs = append(unsubs, unsub)
		}
	}
	if channels["halls"] {
		unsub, err := s.hallSvc.WatchHalls(r.Context(), func(halls []domain.Hall) {
			_ = c.Send(Message{Type: TypeSnapshot, Payload: SnapshotPayload{Collection: "halls", Items: halls}})
		})
		if err != nil {
			slog.Warn("ws watch halls failed", "user", user.ID, "err", err)
		} else {
			unsubs = append(unsubs, unsub)
		}
	}

	go s.pingLoop(c)
	s.readLoop(c, user.ID)

	for _, unsub := range unsubs {
		unsub()
	}
	s.hub.Remove(c)

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "user", user.ID, "err", err)
	}
}

// pingLoop шлет ping каждые pingEvery; pong клиента продлевает read deadline
func (s *Server) pingLoop(c *wsConn) {
	t := time.NewTicker(s.pingEvery)
	defer t.Stop()

	for {
		select {
		case <-c.closed:
			return
		case <-t.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func (s *Server) readLoop(c *wsConn, userID string) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case TypeMeetEvent:
			var p MeetEventPayload
			if decode(msg.Payload, &p) == nil && p.Event != "" {
				s.bridges.Deliver(userID, p.Event, p.Payload)
			}
		}
	}
}

func decode(payload any, v any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
