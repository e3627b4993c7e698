package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory — встроенный бекенд с той же семантикой подписок, что и Postgres.
// Используется в тестах и в деградированном режиме без DSN.
type Memory struct {
	mu    sync.Mutex
	data  map[string]map[string]Doc // collection -> id -> doc
	hub   *watchHub
	clock func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		data:  make(map[string]map[string]Doc),
		hub:   newWatchHub(),
		clock: time.Now,
	}
}

// SetClock подменяет источник времени в тестах
func (m *Memory) SetClock(fn func() time.Time) {
	if fn != nil {
		m.clock = fn
	}
}

func (m *Memory) coll(collection string) map[string]Doc {
	c, ok := m.data[collection]
	if !ok {
		c = make(map[string]Doc)
		m.data[collection] = c
	}
	return c
}

func (m *Memory) GetOne(_ context.Context, collection, id string) (Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.coll(collection)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(d), nil
}

func (m *Memory) GetAll(_ context.Context, collection string) ([]Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.snapshotLocked(collection), nil
}

func (m *Memory) Query(_ context.Context, collection, field string, value any) ([]Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Doc, 0)
	for _, d := range m.coll(collection) {
		if d[field] == value {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

func (m *Memory) Add(_ context.Context, collection string, doc Doc) (string, error) {
	id := uuid.New().String()

	m.mu.Lock()
	d := clone(doc)
	if d == nil {
		d = Doc{}
	}
	d["id"] = id
	d["createdAt"] = m.clock().Format(time.RFC3339Nano)
	m.coll(collection)[id] = d
	all := m.snapshotLocked(collection)
	m.mu.Unlock()

	m.hub.dispatch(collection, id, all, clone(d))
	return id, nil
}

func (m *Memory) Put(_ context.Context, collection, id string, doc Doc) error {
	m.mu.Lock()
	cur := m.coll(collection)[id]
	next := merge(cur, doc)
	next["id"] = id
	if cur == nil {
		next["createdAt"] = m.clock().Format(time.RFC3339Nano)
	}
	next["updatedAt"] = m.clock().Format(time.RFC3339Nano)
	m.coll(collection)[id] = next
	all := m.snapshotLocked(collection)
	m.mu.Unlock()

	m.hub.dispatch(collection, id, all, clone(next))
	return nil
}

func (m *Memory) Patch(_ context.Context, collection, id string, doc Doc) error {
	m.mu.Lock()
	cur, ok := m.coll(collection)[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	next := merge(cur, doc)
	next["updatedAt"] = m.clock().Format(time.RFC3339Nano)
	m.coll(collection)[id] = next
	all := m.snapshotLocked(collection)
	m.mu.Unlock()

	m.hub.dispatch(collection, id, all, clone(next))
	return nil
}

func (m *Memory) Remove(_ context.Context, collection, id string) error {
	m.mu.Lock()
	delete(m.coll(collection), id)
	all := m.snapshotLocked(collection)
	m.mu.Unlock()

	m.hub.dispatch(collection, id, all, nil)
	return nil
}

// Mutate сериализуется общим мьютексом — аналог блокировки строки
func (m *Memory) Mutate(_ context.Context, collection, id string, fn MutateFunc) error {
	m.mu.Lock()
	cur, ok := m.coll(collection)[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}

	next, err := fn(clone(cur))
	if err != nil {
		m.mu.Unlock()
		if err == ErrNoChange {
			return nil
		}
		return err
	}
	next["id"] = id
	next["updatedAt"] = m.clock().Format(time.RFC3339Nano)
	m.coll(collection)[id] = next
	all := m.snapshotLocked(collection)
	m.mu.Unlock()

	m.hub.dispatch(collection, id, all, clone(next))
	return nil
}

func (m *Memory) WatchCollection(_ context.Context, collection string, filter *Filter, fn func([]Doc)) (Unsubscribe, error) {
	m.mu.Lock()
	all := m.snapshotLocked(collection)
	m.mu.Unlock()

	if filter != nil {
		filtered := make([]Doc, 0, len(all))
		for _, d := range all {
			if filter.matches(d) {
				filtered = append(filtered, d)
			}
		}
		all = filtered
	}
	fn(all)

	return m.hub.addCollection(collection, filter, fn), nil
}

func (m *Memory) WatchOne(_ context.Context, collection, id string, fn func(Doc)) (Unsubscribe, error) {
	m.mu.Lock()
	cur := clone(m.coll(collection)[id])
	m.mu.Unlock()

	fn(cur)

	return m.hub.addDoc(collection, id, fn), nil
}

func (m *Memory) snapshotLocked(collection string) []Doc {
	c := m.coll(collection)
	out := make([]Doc, 0, len(c))
	for _, d := range c {
		out = append(out, clone(d))
	}
	return out
}
