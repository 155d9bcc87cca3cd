package messaging

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Publish sends one typed event to a fixed topic.
type Publish[T any] func(event *T) error

// NewPublish binds an event type to a topic on the given transport.
func NewPublish[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}

		return publisher.Publish(topic, message.NewMessage(watermill.NewUUID(), payload))
	}
}

// Nop returns a publish function that drops events. Used in tests and when
// no event transport is configured.
func Nop[T any]() Publish[T] {
	return func(*T) error { return nil }
}

// PublisherGroup owns the transport's lifecycle so the container can close
// it after all publishers are done.
type PublisherGroup struct {
	publisher message.Publisher
}

// NewPublisherGroup wraps a transport publisher.
func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

// Publisher exposes the transport for creating typed publish functions.
func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

// Shutdown closes the transport.
func (g *PublisherGroup) Shutdown() error {
	return g.publisher.Close()
}
