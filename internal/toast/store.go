package toast

import (
	"sync"
	"time"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

type Toast struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store — очередь транзиентных уведомлений с таймерами авто-удаления.
// Операции не возвращают ошибок: отсутствующие id — no-op.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []Toast
	timers map[int64]*time.Timer
	subs   map[int64]func([]Toast)
	subSeq int64
}

func NewStore() *Store {
	return &Store{
		items:  []Toast{},
		timers: make(map[int64]*time.Timer),
		subs:   make(map[int64]func([]Toast)),
	}
}

// Push добавляет тост; при ttl > 0 планирует удаление по id
func (s *Store) Push(message string, severity Severity, ttl time.Duration) int64 {
	if severity == "" {
		severity = SeverityInfo
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.items = append(s.items, Toast{
		ID:        id,
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	})
	if ttl > 0 {
		s.timers[id] = time.AfterFunc(ttl, func() { s.Remove(id) })
	}
	s.mu.Unlock()

	s.notify()
	return id
}

func (s *Store) Success(message string) int64 {
	return s.Push(message, SeveritySuccess, 3*time.Second)
}

func (s *Store) Error(message string) int64 {
	return s.Push(message, SeverityError, 5*time.Second)
}

func (s *Store) Info(message string) int64 {
	return s.Push(message, SeverityInfo, 3*time.Second)
}

func (s *Store) Warning(message string) int64 {
	return s.Push(message, SeverityWarning, 4*time.Second)
}

// Remove идемпотентен; ранний вызов освобождает таймер
func (s *Store) Remove(id int64) {
	s.mu.Lock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}

	found := false
	rest := s.items[:0]
	for _, t := range s.items {
		if t.ID == id {
			found = true
			continue
		}
		rest = append(rest, t)
	}
	s.items = rest
	s.mu.Unlock()

	if found {
		s.notify()
	}
}

// Clear чистит список сразу; висящие таймеры дорабатывают вхолостую
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = []Toast{}
	s.mu.Unlock()

	s.notify()
}

func (s *Store) List() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Toast, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Subscribe(fn func([]Toast)) func() {
	s.mu.Lock()
	s.subSeq++
	id := s.subSeq
	s.subs[id] = fn
	s.mu.Unlock()

	fn(s.List())

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	snapshot := s.List()

	s.mu.Lock()
	fns := make([]func([]Toast), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
