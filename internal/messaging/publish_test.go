package messaging_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcc32/bcc32.com-2018/internal/messaging"
)

type testEvent struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// mockPublisher records published messages per topic.
type mockPublisher struct {
	published  map[string][]*message.Message
	publishErr error
	closed     bool
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{published: make(map[string][]*message.Message)}
}

func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}

	m.published[topic] = append(m.published[topic], messages...)

	return nil
}

func (m *mockPublisher) Close() error {
	m.closed = true

	return nil
}

func TestNewPublish(t *testing.T) {
	t.Run("publishes the event as json on the bound topic", func(t *testing.T) {
		pub := newMockPublisher()
		publish := messaging.NewPublish[testEvent](pub, "test.topic")

		err := publish(&testEvent{Name: "hello", Count: 3})

		require.NoError(t, err)
		require.Len(t, pub.published["test.topic"], 1)

		msg := pub.published["test.topic"][0]
		assert.NotEmpty(t, msg.UUID)

		var got testEvent

		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, testEvent{Name: "hello", Count: 3}, got)
	})

	t.Run("propagates transport failures", func(t *testing.T) {
		errTransport := errors.New("transport error")
		pub := newMockPublisher()
		pub.publishErr = errTransport

		publish := messaging.NewPublish[testEvent](pub, "test.topic")

		assert.ErrorIs(t, publish(&testEvent{}), errTransport)
	})
}

func TestNop(t *testing.T) {
	t.Run("drops events without error", func(t *testing.T) {
		publish := messaging.Nop[testEvent]()

		assert.NoError(t, publish(&testEvent{Name: "dropped"}))
	})
}

func TestPublisherGroup(t *testing.T) {
	t.Run("shutdown closes the transport", func(t *testing.T) {
		pub := newMockPublisher()
		group := messaging.NewPublisherGroup(pub)

		assert.Same(t, message.Publisher(pub), group.Publisher())
		require.NoError(t, group.Shutdown())
		assert.True(t, pub.closed)
	})
}
