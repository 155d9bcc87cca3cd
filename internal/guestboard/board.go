package guestboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Board is the guestboard service: posting, listing, and long-poll waiting
// for the next post.
type Board struct {
	repo   Repository
	hub    *Hub
	now    func() time.Time
	logger *zap.Logger
}

// NewBoard creates a guestboard backed by the given repository.
func NewBoard(repo Repository, hub *Hub, logger *zap.Logger) *Board {
	return &Board{
		repo:   repo,
		hub:    hub,
		now:    time.Now,
		logger: logger,
	}
}

// Post stores a new message and wakes every waiter armed on the hub.
// Returns ErrEmptyMessage when the text is blank after trimming.
func (b *Board) Post(ctx context.Context, visitorID, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	msg := &Message{
		ID:        uuid.NewString(),
		VisitorID: visitorID,
		Text:      text,
		CreatedAt: b.now(),
	}

	if err := b.repo.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	b.hub.Notify()

	b.logger.Debug("message posted",
		zap.String("id", msg.ID),
		zap.String("visitor", visitorID),
	)

	return msg, nil
}

// Messages lists all messages in insertion order, ascending or descending.
func (b *Board) Messages(ctx context.Context, order Order) ([]*Message, error) {
	msgs, err := b.repo.List(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return msgs, nil
}

// WaitForMessage blocks until the next post or the context ends, reporting
// whether a post occurred. The caller bounds the wait with its context.
func (b *Board) WaitForMessage(ctx context.Context) bool {
	return b.hub.Wait(ctx)
}
