package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcc32/bcc32.com-2018/internal/shortener"
)

// PostgresLinkStore is a PostgreSQL implementation of shortener.Repository.
type PostgresLinkStore struct {
	pool *pgxpool.Pool
}

// NewPostgresLinkStore creates a PostgreSQL-backed link store.
func NewPostgresLinkStore(pool *pgxpool.Pool) *PostgresLinkStore {
	return &PostgresLinkStore{pool: pool}
}

func (p *PostgresLinkStore) Save(ctx context.Context, link *shortener.ShortLink) error {
	query := `
		INSERT INTO short_links (word, url, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := p.pool.Exec(ctx, query,
		string(link.Word),
		link.URL,
		link.CreatedAt,
		link.ExpiresAt,
	)

	return err
}

func (p *PostgresLinkStore) GetByWord(ctx context.Context, word shortener.Word) (*shortener.ShortLink, error) {
	query := `
		SELECT word, url, created_at, expires_at
		FROM short_links
		WHERE word = $1
	`

	var link shortener.ShortLink

	err := p.pool.QueryRow(ctx, query, string(word)).Scan(
		&link.Word,
		&link.URL,
		&link.CreatedAt,
		&link.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return &link, nil
}

func (p *PostgresLinkStore) DeleteExpired(ctx context.Context, word shortener.Word, now time.Time) (bool, error) {
	query := `
		DELETE FROM short_links
		WHERE word = $1 AND expires_at < $2
	`

	tag, err := p.pool.Exec(ctx, query, string(word), now)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (p *PostgresLinkStore) ScanExpired(ctx context.Context, now time.Time) ([]*shortener.ShortLink, error) {
	return p.scan(ctx, `
		SELECT word, url, created_at, expires_at
		FROM short_links
		WHERE expires_at < $1
	`, now)
}

func (p *PostgresLinkStore) ScanActive(ctx context.Context, now time.Time) ([]*shortener.ShortLink, error) {
	return p.scan(ctx, `
		SELECT word, url, created_at, expires_at
		FROM short_links
		WHERE expires_at >= $1
	`, now)
}

func (p *PostgresLinkStore) scan(ctx context.Context, query string, now time.Time) ([]*shortener.ShortLink, error) {
	rows, err := p.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*shortener.ShortLink

	for rows.Next() {
		var link shortener.ShortLink

		if err := rows.Scan(&link.Word, &link.URL, &link.CreatedAt, &link.ExpiresAt); err != nil {
			return nil, err
		}

		links = append(links, &link)
	}

	return links, rows.Err()
}

// Compile-time check.
var _ shortener.Repository = (*PostgresLinkStore)(nil)
