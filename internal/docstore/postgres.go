package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cptblues/team-visio/internal/domain"
)

const notifyChannel = "docstore_changes"

// Postgres хранит документы как jsonb и раздает изменения через pg_notify.
type Postgres struct {
	db     *pgxpool.Pool
	hub    *watchHub
	cancel context.CancelFunc
}

var _ Store = (*Postgres)(nil)

func NewPostgres(ctx context.Context, db *pgxpool.Pool) (*Postgres, error) {
	p := &Postgres{
		db:  db,
		hub: newWatchHub(),
	}
	if err := p.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("docstore.ensureSchema: %w", err)
	}

	lctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.listen(lctx)

	return p, nil
}

// Close останавливает слушателя уведомлений; пул закрывает вызывающий
func (p *Postgres) Close() {
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection text        NOT NULL,
			id         text        NOT NULL,
			data       jsonb       NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz,
			PRIMARY KEY (collection, id)
		)`)
	return err
}

func (p *Postgres) GetOne(ctx context.Context, collection, id string) (Doc, error) {
	var raw []byte
	err := p.db.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection=$1 AND id=$2`,
		collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, backendErr("docstore.GetOne", err)
	}
	return decodeRaw(raw)
}

func (p *Postgres) GetAll(ctx context.Context, collection string) ([]Doc, error) {
	rows, err := p.db.Query(ctx,
		`SELECT data FROM documents WHERE collection=$1 ORDER BY created_at, id`,
		collection)
	if err != nil {
		return nil, backendErr("docstore.GetAll", err)
	}
	defer rows.Close()

	return collectDocs(rows)
}

// Query — выборка по равенству одного поля; значение сравнивается как jsonb
func (p *Postgres) Query(ctx context.Context, collection, field string, value any) ([]Doc, error) {
	jv, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	rows, err := p.db.Query(ctx,
		`SELECT data FROM documents WHERE collection=$1 AND data->$2 = $3::jsonb ORDER BY created_at, id`,
		collection, field, string(jv))
	if err != nil {
		return nil, backendErr("docstore.Query", err)
	}
	defer rows.Close()

	return collectDocs(rows)
}

func (p *Postgres) Add(ctx context.Context, collection string, doc Doc) (string, error) {
	id := uuid.New().String()
	d := clone(doc)
	if d == nil {
		d = Doc{}
	}
	d["id"] = id
	d["createdAt"] = time.Now().Format(time.RFC3339Nano)

	raw, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	if _, err := p.db.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, raw); err != nil {
		return "", backendErr("docstore.Add", err)
	}

	p.notify(ctx, collection, id)
	return id, nil
}

func (p *Postgres) Put(ctx context.Context, collection, id string, doc Doc) error {
	d := clone(doc)
	if d == nil {
		d = Doc{}
	}
	d["id"] = id
	d["updatedAt"] = time.Now().Format(time.RFC3339Nano)
	d["createdAt"] = time.Now().Format(time.RFC3339Nano) // применяется только при insert

	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	// на конфликте createdAt существующего документа сохраняется
	if _, err := p.db.Exec(ctx, `
		INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = documents.data || (EXCLUDED.data - 'createdAt'),
		              updated_at = now()`,
		collection, id, raw); err != nil {
		return backendErr("docstore.Put", err)
	}

	p.notify(ctx, collection, id)
	return nil
}

func (p *Postgres) Patch(ctx context.Context, collection, id string, doc Doc) error {
	d := clone(doc)
	if d == nil {
		d = Doc{}
	}
	d["updatedAt"] = time.Now().Format(time.RFC3339Nano)

	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	tag, err := p.db.Exec(ctx,
		`UPDATE documents SET data = data || $3, updated_at = now() WHERE collection=$1 AND id=$2`,
		collection, id, raw)
	if err != nil {
		return backendErr("docstore.Patch", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	p.notify(ctx, collection, id)
	return nil
}

func (p *Postgres) Remove(ctx context.Context, collection, id string) error {
	if _, err := p.db.Exec(ctx,
		`DELETE FROM documents WHERE collection=$1 AND id=$2`,
		collection, id); err != nil {
		return backendErr("docstore.Remove", err)
	}

	p.notify(ctx, collection, id)
	return nil
}

// Mutate — read-modify-write под FOR UPDATE.
// Параллельные Mutate той же строки ждут; лимиты участников не пробиваются.
func (p *Postgres) Mutate(ctx context.Context, collection, id string, fn MutateFunc) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return backendErr("docstore.Mutate", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection=$1 AND id=$2 FOR UPDATE`,
		collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return backendErr("docstore.Mutate", err)
	}
	cur, err := decodeRaw(raw)
	if err != nil {
		return err
	}

	next, err := fn(cur)
	if err != nil {
		if err == ErrNoChange {
			return nil
		}
		return err
	}
	next["id"] = id
	next["updatedAt"] = time.Now().Format(time.RFC3339Nano)

	out, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE documents SET data=$3, updated_at=now() WHERE collection=$1 AND id=$2`,
		collection, id, out); err != nil {
		return backendErr("docstore.Mutate", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return backendErr("docstore.Mutate", err)
	}

	p.notify(ctx, collection, id)
	return nil
}

// backendErr помечает сбой БД сентинелом, не теряя исходный текст
func backendErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrBackend, err)
}

func decodeRaw(raw []byte) (Doc, error) {
	var d Doc
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func collectDocs(rows pgx.Rows) ([]Doc, error) {
	out := make([]Doc, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		d, err := decodeRaw(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
