package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PostgresDocuments stores documents as JSONB rows.
type PostgresDocuments struct {
	pool *pgxpool.Pool
}

// OpenPostgresDocuments connects to url and creates the documents table if
// it is missing.
func OpenPostgresDocuments(ctx context.Context, url string) (*PostgresDocuments, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS trivia_documents (
		key        TEXT PRIMARY KEY,
		body       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create trivia_documents: %w", err)
	}
	return &PostgresDocuments{pool: pool}, nil
}

func (p *PostgresDocuments) Get(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT body FROM trivia_documents WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document %q: %w", key, err)
	}
	return raw, nil
}

func (p *PostgresDocuments) Put(ctx context.Context, key string, doc []byte) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO trivia_documents (key, body, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		key, string(doc))
	if err != nil {
		return fmt.Errorf("store document %q: %w", key, err)
	}
	return nil
}

func (p *PostgresDocuments) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM trivia_documents WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete document %q: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (p *PostgresDocuments) Close() {
	p.pool.Close()
}
