package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cptblues/team-visio/internal/docstore"
	"github.com/cptblues/team-visio/internal/domain"

	"github.com/gorilla/websocket"
)

type stubAuth struct{ user *domain.User }

func (s *stubAuth) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrAuthRequired
	}
	return s.user, nil
}

type stubRoomWatcher struct{}

func (stubRoomWatcher) WatchRooms(ctx context.Context, publicOnly bool, fn func([]domain.Room)) (docstore.Unsubscribe, error) {
	return func() {}, nil
}

type stubHallWatcher struct{}

func (stubHallWatcher) WatchHalls(ctx context.Context, fn func([]domain.Hall)) (docstore.Unsubscribe, error) {
	return func() {}, nil
}

// молчащий клиент не должен отваливаться: сервер пингует, pong двигает deadline
func TestServer_PingKeepsIdleConnectionAlive(t *testing.T) {
	hub := NewHub()
	srv := NewServer(hub, NewBridgeRegistry(hub), &stubAuth{user: &domain.User{ID: "alice"}}, stubRoomWatcher{}, stubHallWatcher{}, nil)
	srv.pingEvery = 100 * time.Millisecond

	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/?access_token=tok&channels=none"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	pings := make(chan struct{}, 16)
	conn.SetPingHandler(func(data string) error {
		pings <- struct{}{}
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	// ReadMessage гоняет control-фреймы; сообщений клиенту никто не шлет
	readErr := make(chan error, 1)
	go func() {
		_, _, err := conn.ReadMessage()
		readErr <- err
	}()

	// три пинга — заведомо дольше, чем 2*pingEvery
	for i := 0; i < 3; i++ {
		select {
		case <-pings:
		case err := <-readErr:
			t.Fatalf("connection dropped before ping %d: %v", i+1, err)
		case <-time.After(2 * time.Second):
			t.Fatalf("no ping %d from server", i+1)
		}
	}

	select {
	case err := <-readErr:
		t.Fatalf("idle connection dropped: %v", err)
	default:
	}
}
