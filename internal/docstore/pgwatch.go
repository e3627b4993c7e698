package docstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

type changeEvent struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// notify — best-effort: сбой уведомления не откатывает запись
func (p *Postgres) notify(ctx context.Context, collection, id string) {
	payload, _ := json.Marshal(changeEvent{Collection: collection, ID: id})
	if _, err := p.db.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, string(payload)); err != nil {
		slog.Warn("docstore notify failed", "collection", collection, "id", id, "err", err)
	}
}

// listen держит выделенное соединение с LISTEN и транслирует изменения в хаб
func (p *Postgres) listen(ctx context.Context) {
	for {
		if err := p.listenOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("docstore listener reconnecting", slog.Any("err", err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (p *Postgres) listenOnce(ctx context.Context) error {
	conn, err := p.db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `LISTEN `+notifyChannel); err != nil {
		return err
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var ev changeEvent
		if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
			slog.Debug("docstore bad notification payload", "payload", n.Payload)
			continue
		}
		if !p.hub.hasWatchers(ev.Collection) {
			continue
		}

		all, err := p.GetAll(ctx, ev.Collection)
		if err != nil {
			slog.Warn("docstore refetch failed", "collection", ev.Collection, slog.Any("err", err))
			continue
		}
		one, err := p.GetOne(ctx, ev.Collection, ev.ID)
		if err != nil && err != ErrNotFound {
			slog.Warn("docstore refetch doc failed", "collection", ev.Collection, "id", ev.ID, slog.Any("err", err))
			continue
		}

		p.hub.dispatch(ev.Collection, ev.ID, all, one)
	}
}

func (p *Postgres) WatchCollection(ctx context.Context, collection string, filter *Filter, fn func([]Doc)) (Unsubscribe, error) {
	var (
		all []Doc
		err error
	)
	if filter != nil {
		all, err = p.Query(ctx, collection, filter.Field, filter.Value)
	} else {
		all, err = p.GetAll(ctx, collection)
	}
	if err != nil {
		return nil, err
	}
	fn(all)

	return p.hub.addCollection(collection, filter, fn), nil
}

func (p *Postgres) WatchOne(ctx context.Context, collection, id string, fn func(Doc)) (Unsubscribe, error) {
	cur, err := p.GetOne(ctx, collection, id)
	if err != nil && err != ErrNotFound {
		return nil, err
	}
	fn(cur)

	return p.hub.addDoc(collection, id, fn), nil
}
