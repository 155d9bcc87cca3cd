package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcc32/bcc32.com-2018/internal/guestboard"
	"github.com/bcc32/bcc32.com-2018/internal/shortener"
	"github.com/bcc32/bcc32.com-2018/internal/store"
)

func testLink(word string, expiresAt time.Time) *shortener.ShortLink {
	return &shortener.ShortLink{
		Word:      shortener.Word(word),
		URL:       "https://example.com/" + word,
		CreatedAt: expiresAt.Add(-time.Hour),
		ExpiresAt: expiresAt,
	}
}

func TestMemoryLinkStore(t *testing.T) {
	now := time.Date(2018, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("save and get round trip", func(t *testing.T) {
		s := store.NewMemoryLinkStore()
		link := testLink("apple", now.Add(time.Hour))

		require.NoError(t, s.Save(context.Background(), link))

		got, err := s.GetByWord(context.Background(), "apple")

		require.NoError(t, err)
		assert.Equal(t, link, got)
	})

	t.Run("get returns ErrNotFound for unknown word", func(t *testing.T) {
		s := store.NewMemoryLinkStore()

		_, err := s.GetByWord(context.Background(), "apple")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("delete expired only removes past-expiry records", func(t *testing.T) {
		s := store.NewMemoryLinkStore()
		_ = s.Save(context.Background(), testLink("apple", now.Add(time.Hour)))
		_ = s.Save(context.Background(), testLink("birch", now.Add(-time.Hour)))

		deleted, err := s.DeleteExpired(context.Background(), "apple", now)
		require.NoError(t, err)
		assert.False(t, deleted, "live record must survive")

		deleted, err = s.DeleteExpired(context.Background(), "birch", now)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = s.DeleteExpired(context.Background(), "birch", now)
		require.NoError(t, err)
		assert.False(t, deleted, "second delete is a no-op")
	})

	t.Run("scans split on expiry", func(t *testing.T) {
		s := store.NewMemoryLinkStore()
		_ = s.Save(context.Background(), testLink("apple", now.Add(time.Hour)))
		_ = s.Save(context.Background(), testLink("birch", now.Add(-time.Hour)))

		expired, err := s.ScanExpired(context.Background(), now)
		require.NoError(t, err)
		require.Len(t, expired, 1)
		assert.Equal(t, shortener.Word("birch"), expired[0].Word)

		active, err := s.ScanActive(context.Background(), now)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, shortener.Word("apple"), active[0].Word)
	})
}

func TestMemoryMessageStore(t *testing.T) {
	t.Run("lists in insertion order", func(t *testing.T) {
		s := store.NewMemoryMessageStore()

		base := time.Date(2018, 6, 1, 12, 0, 0, 0, time.UTC)

		for i, id := range []string{"m1", "m2", "m3"} {
			err := s.Insert(context.Background(), &guestboard.Message{
				ID:        id,
				VisitorID: "v1",
				Text:      id,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			})
			require.NoError(t, err)
		}

		asc, err := s.List(context.Background(), guestboard.OrderAsc)
		require.NoError(t, err)
		require.Len(t, asc, 3)
		assert.Equal(t, "m1", asc[0].ID)
		assert.Equal(t, "m3", asc[2].ID)

		desc, err := s.List(context.Background(), guestboard.OrderDesc)
		require.NoError(t, err)
		require.Len(t, desc, 3)
		assert.Equal(t, "m3", desc[0].ID)
		assert.Equal(t, "m1", desc[2].ID)
	})

	t.Run("empty board lists empty", func(t *testing.T) {
		s := store.NewMemoryMessageStore()

		msgs, err := s.List(context.Background(), guestboard.OrderAsc)

		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}
