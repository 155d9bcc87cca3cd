package guestboard

import (
	"context"
	"errors"
	"time"
)

// Message is one anonymous guestboard entry. Append-only; immutable once
// stored.
type Message struct {
	ID        string
	VisitorID string
	Text      string
	CreatedAt time.Time
}

// Order selects the listing direction relative to insertion order.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ErrEmptyMessage is returned when a post contains no text after trimming.
var ErrEmptyMessage = errors.New("message is empty")

// Repository is the durable store contract for guestboard messages.
type Repository interface {
	Insert(ctx context.Context, msg *Message) error
	List(ctx context.Context, order Order) ([]*Message, error)
}
