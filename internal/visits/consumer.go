package visits

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Consumer subscribes to the visit and post topics and persists their
// events. A malformed or unsaveable message is nacked and redelivered by
// the transport.
type Consumer struct {
	subscriber message.Subscriber
	store      Store
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewConsumer creates a consumer over the given transport and store.
func NewConsumer(subscriber message.Subscriber, store Store, logger *zap.Logger) *Consumer {
	return &Consumer{
		subscriber: subscriber,
		store:      store,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start subscribes to both topics and begins processing.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	visitMsgs, err := c.subscriber.Subscribe(ctx, TopicVisitRecorded)
	if err != nil {
		return err
	}

	postMsgs, err := c.subscriber.Subscribe(ctx, TopicMessagePosted)
	if err != nil {
		return err
	}

	go c.consumeLoop(ctx, visitMsgs, postMsgs)

	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, visitMsgs, postMsgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-visitMsgs:
			if !ok {
				return
			}

			c.handleVisit(ctx, msg)
		case msg, ok := <-postMsgs:
			if !ok {
				return
			}

			c.handleMessagePosted(ctx, msg)
		}
	}
}

func (c *Consumer) handleVisit(ctx context.Context, msg *message.Message) {
	var event VisitEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Error("failed to unmarshal visit event", zap.Error(err))
		msg.Nack()

		return
	}

	if err := c.store.SaveVisit(ctx, &event); err != nil {
		c.logger.Error("failed to save visit",
			zap.String("word", event.Word),
			zap.Error(err),
		)
		msg.Nack()

		return
	}

	msg.Ack()
}

func (c *Consumer) handleMessagePosted(ctx context.Context, msg *message.Message) {
	var event MessagePostedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Error("failed to unmarshal message posted event", zap.Error(err))
		msg.Nack()

		return
	}

	if err := c.store.SaveMessagePosted(ctx, &event); err != nil {
		c.logger.Error("failed to save message posted event",
			zap.String("messageId", event.MessageID),
			zap.Error(err),
		)
		msg.Nack()

		return
	}

	msg.Ack()
}

// Shutdown stops the consumer, waits for the loop to drain, and closes the
// subscription.
func (c *Consumer) Shutdown() error {
	if c.cancel != nil {
		c.cancel()
	}

	<-c.done

	return c.subscriber.Close()
}
