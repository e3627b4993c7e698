package meet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cptblues/team-visio/internal/domain"
)

func TestScriptLoader_EnsureLoaded(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/external_api.js" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		hits.Add(1)
		_, _ = w.Write([]byte("var JitsiMeetExternalAPI = function(){};"))
	}))
	defer srv.Close()

	l := NewScriptLoader(LoaderConfig{Domain: "example.org", BaseURL: srv.URL})
	if l.State() != StateUnloaded {
		t.Fatalf("initial state = %v", l.State())
	}

	// параллельные вызовы делят одну загрузку
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = l.EnsureLoaded(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("EnsureLoaded[%d]: %v", i, err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected single fetch, got %d", got)
	}
	if l.State() != StateReady {
		t.Fatalf("state after load = %v", l.State())
	}

	// повторный вызов — no-op
	if err := l.EnsureLoaded(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("ready loader refetched: %d", got)
	}
}

func TestScriptLoader_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	l := NewScriptLoader(LoaderConfig{BaseURL: srv.URL})
	err := l.EnsureLoaded(context.Background())
	if !errors.Is(err, domain.ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
	// откат в Unloaded, можно пробовать снова
	if l.State() != StateUnloaded {
		t.Fatalf("state after failure = %v", l.State())
	}
}

func TestScriptLoader_MissingConstructor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("console.log('not the api you want');"))
	}))
	defer srv.Close()

	l := NewScriptLoader(LoaderConfig{BaseURL: srv.URL})
	if err := l.EnsureLoaded(context.Background()); !errors.Is(err, domain.ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
}

// загрузка отвязана от контекста инициатора: его отмена
// не роняет остальных ждущих тот же fetch
func TestScriptLoader_CanceledInitiator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("var JitsiMeetExternalAPI = function(){};"))
	}))
	defer srv.Close()

	l := NewScriptLoader(LoaderConfig{BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.EnsureLoaded(ctx); err != nil {
		t.Fatalf("EnsureLoaded with canceled initiator: %v", err)
	}
	if l.State() != StateReady {
		t.Fatalf("state = %v", l.State())
	}
}

func TestScriptLoader_RetryAfterFailure(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("var JitsiMeetExternalAPI = function(){};"))
	}))
	defer srv.Close()

	l := NewScriptLoader(LoaderConfig{BaseURL: srv.URL})
	if err := l.EnsureLoaded(context.Background()); err == nil {
		t.Fatal("expected failure")
	}

	fail.Store(false)
	if err := l.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if l.State() != StateReady {
		t.Fatalf("state after retry = %v", l.State())
	}
}
