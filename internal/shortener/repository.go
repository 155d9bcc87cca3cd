package shortener

import (
	"context"
	"time"
)

// Repository is the durable store contract for short links.
type Repository interface {
	// Save persists a new link.
	Save(ctx context.Context, link *ShortLink) error

	// GetByWord retrieves the link bound to a word.
	// Returns ErrNotFound if no record exists; expiry is the engine's concern.
	GetByWord(ctx context.Context, word Word) (*ShortLink, error)

	// DeleteExpired removes the record for a word only if its expiry has
	// passed at the given instant, and reports whether a record was removed.
	// The condition is what keeps a reclamation pass from deleting a link
	// that was re-allocated after the pass took its snapshot.
	DeleteExpired(ctx context.Context, word Word, now time.Time) (bool, error)

	// ScanExpired returns all links whose expiry has passed.
	ScanExpired(ctx context.Context, now time.Time) ([]*ShortLink, error)

	// ScanActive returns all links whose expiry has not passed.
	// Used to rehydrate the word pool at startup.
	ScanActive(ctx context.Context, now time.Time) ([]*ShortLink, error)
}
