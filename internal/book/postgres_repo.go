package book

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo stores books as JSONB documents in the books table. The
// identifier lives in its own uuid column and is never part of doc.
type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Insert(ctx context.Context, doc Document) (Document, error) {
	payload, err := json.Marshal(doc.withoutID())
	if err != nil {
		return nil, fmt.Errorf("encode book: %w", err)
	}

	const sql = `
		INSERT INTO books (id, doc, created_at, updated_at)
		VALUES ($1::uuid, $2::jsonb, NOW(), NOW())
		RETURNING id::text, doc`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	out, err := scanDocument(r.db.QueryRow(timeoutCtx, sql, uuid.NewString(), string(payload)))
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	return out, nil
}

func (r *PostgresRepo) Find(ctx context.Context, f Filter) ([]Document, error) {
	where, args, err := pgFilter(f)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id::text, doc FROM books %s ORDER BY created_at, id`, where)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) FindOne(ctx context.Context, f Filter) (Document, error) {
	where, args, err := pgFilter(f)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id::text, doc FROM books %s LIMIT 1`, where)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return notFound(scanDocument(r.db.QueryRow(timeoutCtx, query, args...)))
}

// UpdateByID merges patch into doc with the jsonb || operator, which
// replaces top-level keys and keeps the others.
func (r *PostgresRepo) UpdateByID(ctx context.Context, id string, patch Document) (Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid book id %q: %w", id, err)
	}
	payload, err := json.Marshal(patch.withoutID())
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}

	const sql = `
		UPDATE books SET doc = doc || $2::jsonb, updated_at = NOW()
		WHERE id = $1::uuid
		RETURNING id::text, doc`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return notFound(scanDocument(r.db.QueryRow(timeoutCtx, sql, id, string(payload))))
}

func (r *PostgresRepo) UpdateOne(ctx context.Context, f Filter, patch Document) (Document, error) {
	where, args, err := pgFilter(f)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(patch.withoutID())
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	args = append(args, string(payload))

	query := fmt.Sprintf(`
		UPDATE books SET doc = doc || $%d::jsonb, updated_at = NOW()
		WHERE id = (SELECT id FROM books %s ORDER BY created_at LIMIT 1)
		RETURNING id::text, doc`, len(args), where)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return notFound(scanDocument(r.db.QueryRow(timeoutCtx, query, args...)))
}

func (r *PostgresRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid book id %q: %w", id, err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Ping(timeoutCtx)
}

// pgFilter renders f as a jsonb containment test. Containment matches a
// scalar by equality and an array by membership, which is what both filter
// kinds need.
func pgFilter(f Filter) (string, []any, error) {
	if f.IsZero() {
		return "", nil, nil
	}
	value := f.Value()
	if f.Contains() {
		value = []any{value}
	}
	probe, err := json.Marshal(map[string]any{f.Field(): value})
	if err != nil {
		return "", nil, fmt.Errorf("encode filter: %w", err)
	}
	return "WHERE doc @> $1::jsonb", []any{string(probe)}, nil
}

func scanDocument(row pgx.Row) (Document, error) {
	var (
		id  string
		raw []byte
	)
	if err := row.Scan(&id, &raw); err != nil {
		return nil, err
	}
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode book %s: %w", id, err)
	}
	doc[FieldID] = id
	return doc, nil
}

func notFound(doc Document, err error) (Document, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return doc, err
}
