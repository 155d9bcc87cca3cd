package visits_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bcc32/bcc32.com-2018/internal/visits"
)

// mockSubscriber hands out one channel per topic and lets the test feed
// messages into them.
type mockSubscriber struct {
	mu     sync.Mutex
	topics map[string]chan *message.Message
	closed bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{topics: make(map[string]chan *message.Message)}
}

func (m *mockSubscriber) Subscribe(_ context.Context, topic string) (<-chan *message.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *message.Message, 8)
	m.topics[topic] = ch

	return ch, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true

	for _, ch := range m.topics {
		close(ch)
	}

	return nil
}

func (m *mockSubscriber) deliver(t *testing.T, topic string, payload []byte) *message.Message {
	t.Helper()

	m.mu.Lock()
	ch, ok := m.topics[topic]
	m.mu.Unlock()

	require.True(t, ok, "no subscription for topic %s", topic)

	msg := message.NewMessage(watermill.NewUUID(), payload)
	ch <- msg

	return msg
}

// mockStore records saved events and can be made to fail.
type mockStore struct {
	mu      sync.Mutex
	visits  []*visits.VisitEvent
	posts   []*visits.MessagePostedEvent
	saveErr error
}

func (m *mockStore) SaveVisit(_ context.Context, event *visits.VisitEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}

	m.visits = append(m.visits, event)

	return nil
}

func (m *mockStore) SaveMessagePosted(_ context.Context, event *visits.MessagePostedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}

	m.posts = append(m.posts, event)

	return nil
}

func (m *mockStore) visitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.visits)
}

func (m *mockStore) postCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.posts)
}

func startConsumer(t *testing.T, store *mockStore) (*visits.Consumer, *mockSubscriber) {
	t.Helper()

	sub := newMockSubscriber()
	consumer := visits.NewConsumer(sub, store, zap.NewNop())

	require.NoError(t, consumer.Start(context.Background()))

	t.Cleanup(func() {
		require.NoError(t, consumer.Shutdown())
	})

	return consumer, sub
}

func waitAcked(t *testing.T, msg *message.Message) {
	t.Helper()

	select {
	case <-msg.Acked():
	case <-msg.Nacked():
		t.Fatal("message was nacked")
	case <-time.After(5 * time.Second):
		t.Fatal("message was never acked")
	}
}

func waitNacked(t *testing.T, msg *message.Message) {
	t.Helper()

	select {
	case <-msg.Nacked():
	case <-msg.Acked():
		t.Fatal("message was acked")
	case <-time.After(5 * time.Second):
		t.Fatal("message was never nacked")
	}
}

func TestConsumer(t *testing.T) {
	t.Run("saves and acks a visit event", func(t *testing.T) {
		store := &mockStore{}
		_, sub := startConsumer(t, store)

		event := visits.VisitEvent{
			VisitorID:  "visitor-1",
			Word:       "apple",
			TargetURL:  "https://example.com",
			OccurredAt: time.Now(),
		}

		payload, err := json.Marshal(event)
		require.NoError(t, err)

		msg := sub.deliver(t, visits.TopicVisitRecorded, payload)

		waitAcked(t, msg)
		require.Equal(t, 1, store.visitCount())
		assert.Equal(t, "apple", store.visits[0].Word)
	})

	t.Run("saves and acks a message posted event", func(t *testing.T) {
		store := &mockStore{}
		_, sub := startConsumer(t, store)

		event := visits.MessagePostedEvent{
			MessageID: "m1",
			VisitorID: "visitor-1",
			PostedAt:  time.Now(),
		}

		payload, err := json.Marshal(event)
		require.NoError(t, err)

		msg := sub.deliver(t, visits.TopicMessagePosted, payload)

		waitAcked(t, msg)
		require.Equal(t, 1, store.postCount())
		assert.Equal(t, "m1", store.posts[0].MessageID)
	})

	t.Run("nacks a malformed payload", func(t *testing.T) {
		store := &mockStore{}
		_, sub := startConsumer(t, store)

		msg := sub.deliver(t, visits.TopicVisitRecorded, []byte("not json"))

		waitNacked(t, msg)
		assert.Equal(t, 0, store.visitCount())
	})

	t.Run("nacks when the store fails", func(t *testing.T) {
		store := &mockStore{saveErr: errors.New("store error")}
		_, sub := startConsumer(t, store)

		payload, err := json.Marshal(visits.VisitEvent{Word: "apple"})
		require.NoError(t, err)

		msg := sub.deliver(t, visits.TopicVisitRecorded, payload)

		waitNacked(t, msg)
	})

	t.Run("shutdown closes the subscription", func(t *testing.T) {
		store := &mockStore{}
		sub := newMockSubscriber()
		consumer := visits.NewConsumer(sub, store, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		require.NoError(t, consumer.Shutdown())
		assert.True(t, sub.closed)
	})
}
