package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/bcc32/bcc32.com-2018/internal/guestboard"
	"github.com/bcc32/bcc32.com-2018/internal/messaging"
	"github.com/bcc32/bcc32.com-2018/internal/visits"
)

// GuestboardHandler handles posting, listing, and long-polling the
// guestboard.
type GuestboardHandler struct {
	board         *guestboard.Board
	publishPosted messaging.Publish[visits.MessagePostedEvent]
	logger        *zap.Logger
}

// NewGuestboardHandler creates a guestboard handler.
func NewGuestboardHandler(
	board *guestboard.Board,
	publishPosted messaging.Publish[visits.MessagePostedEvent],
	logger *zap.Logger,
) *GuestboardHandler {
	return &GuestboardHandler{
		board:         board,
		publishPosted: publishPosted,
		logger:        logger,
	}
}

// PostMessage stores an anonymous message and wakes long-poll waiters.
func (h *GuestboardHandler) PostMessage(ctx context.Context, req *PostMessageRequest) (*PostMessageResponse, error) {
	meta := RequestMetaFromContext(ctx)

	msg, err := h.board.Post(ctx, meta.VisitorID, req.Body.Message)
	if err != nil {
		if errors.Is(err, guestboard.ErrEmptyMessage) {
			return nil, huma.Error400BadRequest("message must not be empty")
		}

		h.logger.Error("failed to post message", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to post message")
	}

	event := &visits.MessagePostedEvent{
		MessageID: msg.ID,
		VisitorID: msg.VisitorID,
		ClientIP:  meta.ClientIP,
		PostedAt:  msg.CreatedAt,
	}

	if err := h.publishPosted(event); err != nil {
		h.logger.Error("failed to publish message posted event",
			zap.String("messageId", msg.ID),
			zap.Error(err),
		)
	}

	resp := &PostMessageResponse{}
	resp.Body.ID = msg.ID
	resp.Body.Message = msg.Text
	resp.Body.CreatedAt = msg.CreatedAt

	return resp, nil
}

// ListMessages returns all messages in the requested insertion order.
func (h *GuestboardHandler) ListMessages(ctx context.Context, req *ListMessagesRequest) (*ListMessagesResponse, error) {
	msgs, err := h.board.Messages(ctx, guestboard.Order(req.Order))
	if err != nil {
		h.logger.Error("failed to list messages", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list messages")
	}

	resp := &ListMessagesResponse{}
	resp.Body.Messages = make([]MessageView, 0, len(msgs))

	for _, msg := range msgs {
		resp.Body.Messages = append(resp.Body.Messages, MessageView{
			ID:        msg.ID,
			Message:   msg.Text,
			CreatedAt: msg.CreatedAt,
		})
	}

	return resp, nil
}

// PollMessages blocks until a new message is posted or the timeout passes.
func (h *GuestboardHandler) PollMessages(ctx context.Context, req *PollRequest) (*PollResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(req.TimeoutSeconds)*time.Second)
	defer cancel()

	resp := &PollResponse{}
	resp.Body.NewMessage = h.board.WaitForMessage(ctx)

	return resp, nil
}
