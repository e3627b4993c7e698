package toast

import (
	"testing"
	"time"
)

func TestStore_PushAndExpire(t *testing.T) {
	s := NewStore()

	id := s.Push("saved", SeveritySuccess, 30*time.Millisecond)

	items := s.List()
	if len(items) != 1 || items[0].ID != id || items[0].Message != "saved" {
		t.Fatalf("unexpected list: %v", items)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(s.List()) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("toast did not expire")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStore_SeverityHelpers(t *testing.T) {
	s := NewStore()

	s.Success("ok")
	s.Error("bad")
	s.Info("fyi")
	s.Warning("careful")

	items := s.List()
	if len(items) != 4 {
		t.Fatalf("expected 4 toasts, got %d", len(items))
	}
	want := []Severity{SeveritySuccess, SeverityError, SeverityInfo, SeverityWarning}
	for i, sev := range want {
		if items[i].Severity != sev {
			t.Fatalf("toast %d severity = %q, want %q", i, items[i].Severity, sev)
		}
	}
}

func TestStore_DefaultSeverity(t *testing.T) {
	s := NewStore()

	s.Push("plain", "", 0)
	items := s.List()
	if len(items) != 1 || items[0].Severity != SeverityInfo {
		t.Fatalf("empty severity should default to info: %v", items)
	}
}

func TestStore_RemoveIdempotent(t *testing.T) {
	s := NewStore()

	id := s.Push("x", SeverityInfo, time.Minute)
	s.Remove(id)
	s.Remove(id) // повторное удаление — no-op
	s.Remove(999)

	if len(s.List()) != 0 {
		t.Fatalf("expected empty list, got %v", s.List())
	}
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()

	s.Push("a", SeverityInfo, 0)
	s.Push("b", SeverityInfo, time.Minute)
	s.Clear()

	if len(s.List()) != 0 {
		t.Fatalf("expected empty list, got %v", s.List())
	}
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore()
	s.Push("early", SeverityInfo, 0)

	var got [][]Toast
	unsub := s.Subscribe(func(items []Toast) {
		got = append(got, items)
	})

	// текущее состояние приходит сразу
	if len(got) != 1 || len(got[0]) != 1 {
		t.Fatalf("expected immediate snapshot, got %v", got)
	}

	s.Push("later", SeverityInfo, 0)
	if len(got) != 2 || len(got[1]) != 2 {
		t.Fatalf("expected snapshot after push, got %v", got)
	}

	unsub()
	s.Push("silent", SeverityInfo, 0)
	if len(got) != 2 {
		t.Fatalf("unsubscribed listener still fired: %d", len(got))
	}
}
