package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcc32/bcc32.com-2018/internal/guestboard"
)

// PostgresMessageStore is a PostgreSQL implementation of guestboard.Repository.
type PostgresMessageStore struct {
	pool *pgxpool.Pool
}

// NewPostgresMessageStore creates a PostgreSQL-backed message store.
func NewPostgresMessageStore(pool *pgxpool.Pool) *PostgresMessageStore {
	return &PostgresMessageStore{pool: pool}
}

func (p *PostgresMessageStore) Insert(ctx context.Context, msg *guestboard.Message) error {
	query := `
		INSERT INTO guestboard_messages (id, visitor_id, text, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := p.pool.Exec(ctx, query, msg.ID, msg.VisitorID, msg.Text, msg.CreatedAt)

	return err
}

func (p *PostgresMessageStore) List(ctx context.Context, order guestboard.Order) ([]*guestboard.Message, error) {
	direction := "ASC"
	if order == guestboard.OrderDesc {
		direction = "DESC"
	}

	// seq is a bigserial; insertion order, not timestamp order.
	query := fmt.Sprintf(`
		SELECT id, visitor_id, text, created_at
		FROM guestboard_messages
		ORDER BY seq %s
	`, direction)

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*guestboard.Message

	for rows.Next() {
		var msg guestboard.Message

		if err := rows.Scan(&msg.ID, &msg.VisitorID, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, err
		}

		msgs = append(msgs, &msg)
	}

	return msgs, rows.Err()
}

// Compile-time check.
var _ guestboard.Repository = (*PostgresMessageStore)(nil)
