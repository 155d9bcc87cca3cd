package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/bcc32/bcc32.com-2018/internal/messaging"
	"github.com/bcc32/bcc32.com-2018/internal/shortener"
	"github.com/bcc32/bcc32.com-2018/internal/visits"
)

// Shortener is the engine surface the handlers need.
type Shortener interface {
	Shorten(ctx context.Context, rawURL string) (*shortener.ShortLink, error)
	Lookup(ctx context.Context, word shortener.Word) (string, error)
}

// LinkHandler handles short link creation and resolution.
type LinkHandler struct {
	engine       Shortener
	baseURL      string
	publishVisit messaging.Publish[visits.VisitEvent]
	logger       *zap.Logger
}

// NewLinkHandler creates a link handler.
func NewLinkHandler(
	engine Shortener,
	baseURL string,
	publishVisit messaging.Publish[visits.VisitEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		engine:       engine,
		baseURL:      baseURL,
		publishVisit: publishVisit,
		logger:       logger,
	}
}

// CreateShortLink allocates a word for the submitted URL.
func (h *LinkHandler) CreateShortLink(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	link, err := h.engine.Shorten(ctx, req.Body.URL)
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrInvalidURL):
			return nil, huma.Error400BadRequest("url must be absolute")
		case errors.Is(err, shortener.ErrNoFreeWords):
			// Capacity limit, not a bug: every word is bound to a live link.
			return nil, huma.Error503ServiceUnavailable("no short words available, try again later")
		default:
			h.logger.Error("failed to shorten url", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to create short link")
		}
	}

	shortURL := fmt.Sprintf("%s/u/%s", h.baseURL, link.Word)

	resp := &ShortenResponse{}
	resp.Headers.Location = shortURL
	resp.Body.Word = string(link.Word)
	resp.Body.ShortURL = shortURL
	resp.Body.URL = link.URL
	resp.Body.ExpiresAt = link.ExpiresAt

	return resp, nil
}

// Redirect resolves a word and redirects to its destination.
func (h *LinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	target, err := h.engine.Lookup(ctx, shortener.Word(req.Word))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short link not found")
		}

		h.logger.Error("failed to look up short link",
			zap.String("word", req.Word),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to resolve short link")
	}

	meta := RequestMetaFromContext(ctx)
	event := &visits.VisitEvent{
		VisitorID:  meta.VisitorID,
		Word:       req.Word,
		TargetURL:  target,
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
		OccurredAt: time.Now(),
	}

	if err := h.publishVisit(event); err != nil {
		h.logger.Error("failed to publish visit event",
			zap.String("word", req.Word),
			zap.Error(err),
		)
	}

	// Links expire, so the redirect must not be cached as permanent.
	resp := &RedirectResponse{
		Status: http.StatusFound,
	}
	resp.Headers.Location = target

	return resp, nil
}
