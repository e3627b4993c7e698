package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// Основные коллекции
const (
	CollectionUsers      = "users"
	CollectionRooms      = "rooms"
	CollectionHalls      = "halls"
	CollectionIdentities = "identities"
	CollectionSessions   = "sessions"
)

var (
	ErrNotFound = errors.New("docstore: not found")
	// ErrNoChange — sentinel для Mutate: прервать без записи и без ошибки
	ErrNoChange = errors.New("docstore: no change")
)

// Документ хранится как плоский json-объект
type Doc map[string]any

type Unsubscribe func()

// Фильтр по одному полю (равенство), как у исходных подписок
type Filter struct {
	Field string
	Value any
}

func (f *Filter) matches(d Doc) bool {
	if f == nil {
		return true
	}
	return d[f.Field] == f.Value
}

type MutateFunc func(Doc) (Doc, error)

type Store interface {
	GetOne(ctx context.Context, collection, id string) (Doc, error)
	GetAll(ctx context.Context, collection string) ([]Doc, error)
	Query(ctx context.Context, collection, field string, value any) ([]Doc, error)

	// Add генерирует id и ставит createdAt
	Add(ctx context.Context, collection string, doc Doc) (string, error)
	// Put — upsert со слиянием полей, ставит updatedAt
	Put(ctx context.Context, collection, id string, doc Doc) error
	// Patch — ошибка, если документа нет
	Patch(ctx context.Context, collection, id string, doc Doc) error
	Remove(ctx context.Context, collection, id string) error

	// Mutate — атомарный read-modify-write под блокировкой строки
	Mutate(ctx context.Context, collection, id string, fn MutateFunc) error

	// Подписки: сразу текущее состояние, затем каждое изменение
	WatchCollection(ctx context.Context, collection string, filter *Filter, fn func([]Doc)) (Unsubscribe, error)
	WatchOne(ctx context.Context, collection, id string, fn func(Doc)) (Unsubscribe, error)
}

// Decode переливает документ в типизированную структуру через json
func Decode(d Doc, v any) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Encode переливает структуру в документ
func Encode(v any) (Doc, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d Doc
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func clone(d Doc) Doc {
	if d == nil {
		return nil
	}
	out := make(Doc, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func merge(dst, src Doc) Doc {
	out := clone(dst)
	if out == nil {
		out = Doc{}
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}
