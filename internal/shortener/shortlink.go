package shortener

import (
	"errors"
	"time"
)

// Word is a short identifier drawn from the word pool. It doubles as the
// path segment of the short URL.
type Word string

// ShortLink maps a word to a destination URL for a limited lifetime.
type ShortLink struct {
	Word      Word
	URL       string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the link is past its expiry at the given instant.
func (l *ShortLink) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

var (
	// ErrInvalidURL is returned when the submitted URL does not parse as an
	// absolute URL. Rejected before any state change.
	ErrInvalidURL = errors.New("invalid url")

	// ErrNoFreeWords is returned when every word in the vocabulary is bound
	// to a live link. Expected under sustained load; maps to HTTP 503 upstream.
	ErrNoFreeWords = errors.New("no free words")

	// ErrNotFound is returned when a word has no live link. Expired and
	// never-assigned words are deliberately indistinguishable.
	ErrNotFound = errors.New("short link not found")

	// ErrStorage wraps failures from the durable store.
	ErrStorage = errors.New("storage failure")
)
