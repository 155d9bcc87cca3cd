package store

import (
	"context"
	"sync"
	"time"

	"github.com/bcc32/bcc32.com-2018/internal/guestboard"
	"github.com/bcc32/bcc32.com-2018/internal/shortener"
)

// MemoryLinkStore is an in-memory implementation of shortener.Repository.
type MemoryLinkStore struct {
	mu    sync.RWMutex
	links map[shortener.Word]shortener.ShortLink
}

// NewMemoryLinkStore creates an empty in-memory link store.
func NewMemoryLinkStore() *MemoryLinkStore {
	return &MemoryLinkStore{
		links: make(map[shortener.Word]shortener.ShortLink),
	}
}

func (m *MemoryLinkStore) Save(_ context.Context, link *shortener.ShortLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.links[link.Word] = *link

	return nil
}

func (m *MemoryLinkStore) GetByWord(_ context.Context, word shortener.Word) (*shortener.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[word]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &link, nil
}

func (m *MemoryLinkStore) DeleteExpired(_ context.Context, word shortener.Word, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[word]
	if !ok || !link.Expired(now) {
		return false, nil
	}

	delete(m.links, word)

	return true, nil
}

func (m *MemoryLinkStore) ScanExpired(_ context.Context, now time.Time) ([]*shortener.ShortLink, error) {
	return m.scan(func(l *shortener.ShortLink) bool { return l.Expired(now) }), nil
}

func (m *MemoryLinkStore) ScanActive(_ context.Context, now time.Time) ([]*shortener.ShortLink, error) {
	return m.scan(func(l *shortener.ShortLink) bool { return !l.Expired(now) }), nil
}

func (m *MemoryLinkStore) scan(keep func(*shortener.ShortLink) bool) []*shortener.ShortLink {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*shortener.ShortLink

	for _, link := range m.links {
		link := link
		if keep(&link) {
			out = append(out, &link)
		}
	}

	return out
}

// Compile-time check.
var _ shortener.Repository = (*MemoryLinkStore)(nil)

// MemoryMessageStore is an in-memory implementation of guestboard.Repository.
type MemoryMessageStore struct {
	mu       sync.RWMutex
	messages []guestboard.Message
}

// NewMemoryMessageStore creates an empty in-memory message store.
func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{}
}

func (m *MemoryMessageStore) Insert(_ context.Context, msg *guestboard.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, *msg)

	return nil
}

func (m *MemoryMessageStore) List(_ context.Context, order guestboard.Order) ([]*guestboard.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*guestboard.Message, len(m.messages))

	for i := range m.messages {
		msg := m.messages[i]

		if order == guestboard.OrderDesc {
			out[len(m.messages)-1-i] = &msg
		} else {
			out[i] = &msg
		}
	}

	return out, nil
}

// Compile-time check.
var _ guestboard.Repository = (*MemoryMessageStore)(nil)
