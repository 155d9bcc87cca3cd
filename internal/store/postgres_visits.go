package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcc32/bcc32.com-2018/internal/visits"
)

// PostgresVisitStore is a PostgreSQL implementation of visits.Store.
type PostgresVisitStore struct {
	pool *pgxpool.Pool
}

// NewPostgresVisitStore creates a PostgreSQL-backed visit store.
func NewPostgresVisitStore(pool *pgxpool.Pool) *PostgresVisitStore {
	return &PostgresVisitStore{pool: pool}
}

func (p *PostgresVisitStore) SaveVisit(ctx context.Context, event *visits.VisitEvent) error {
	query := `
		INSERT INTO visits (visitor_id, word, target_url, client_ip, user_agent, referrer, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := p.pool.Exec(ctx, query,
		event.VisitorID,
		event.Word,
		event.TargetURL,
		event.ClientIP,
		event.UserAgent,
		event.Referrer,
		event.OccurredAt,
	)

	return err
}

func (p *PostgresVisitStore) SaveMessagePosted(ctx context.Context, event *visits.MessagePostedEvent) error {
	query := `
		INSERT INTO message_events (message_id, visitor_id, client_ip, posted_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := p.pool.Exec(ctx, query,
		event.MessageID,
		event.VisitorID,
		event.ClientIP,
		event.PostedAt,
	)

	return err
}

// Compile-time check.
var _ visits.Store = (*PostgresVisitStore)(nil)
