package shortener

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config holds the engine's fixed construction-time settings.
type Config struct {
	// TTL is the lifetime of a link from allocation to expiry.
	TTL time.Duration

	// SweepInterval is how often the reclamation sweep runs.
	SweepInterval time.Duration

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

const (
	defaultTTL           = 7 * 24 * time.Hour
	defaultSweepInterval = time.Minute
)

// Engine is the public contract for creating and resolving short links.
// It is the sole writer of link records and the sole mutator of the pool.
type Engine struct {
	store         Repository
	pool          *WordPool
	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	logger        *zap.Logger

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewEngine creates an engine. Call Rehydrate to sync the pool with the
// store and Start to begin the reclamation sweep.
func NewEngine(store Repository, pool *WordPool, cfg Config, logger *zap.Logger) *Engine {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Engine{
		store:         store,
		pool:          pool,
		ttl:           cfg.TTL,
		sweepInterval: cfg.SweepInterval,
		now:           cfg.Now,
		logger:        logger,
	}
}

// Rehydrate reserves a word for every non-expired link already in the store,
// so a restarted process cannot hand out a word that is still live.
func (e *Engine) Rehydrate(ctx context.Context) error {
	links, err := e.store.ScanActive(ctx, e.now())
	if err != nil {
		return fmt.Errorf("%w: scan active links: %v", ErrStorage, err)
	}

	for _, link := range links {
		if err := e.pool.Reserve(link.Word); err != nil {
			// A record whose word fell out of the configured vocabulary can
			// no longer be allocated, so it cannot collide. Resolvable until
			// expiry, then swept.
			e.logger.Warn("link word not in vocabulary",
				zap.String("word", string(link.Word)),
			)
		}
	}

	e.logger.Info("word pool rehydrated",
		zap.Int("assigned", e.pool.Assigned()),
		zap.Int("free", e.pool.Free()),
	)

	return nil
}

// Start launches the periodic reclamation sweep.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})

	go e.sweepLoop(ctx)
}

// Shorten allocates a word for the URL and persists the mapping.
// The URL must parse as an absolute URL; otherwise ErrInvalidURL is returned
// before any allocation. Returns ErrNoFreeWords when the vocabulary is
// exhausted. If persistence fails, the allocated word is released back to
// the pool and the error wraps ErrStorage.
func (e *Engine) Shorten(ctx context.Context, rawURL string) (*ShortLink, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	word, err := e.pool.TryAllocate()
	if err != nil {
		return nil, err
	}

	now := e.now()
	link := &ShortLink{
		Word:      word,
		URL:       rawURL,
		CreatedAt: now,
		ExpiresAt: now.Add(e.ttl),
	}

	// The compensating release must run even if the caller has gone away,
	// so the persistence step ignores the caller's cancellation.
	if err := e.store.Save(context.WithoutCancel(ctx), link); err != nil {
		e.pool.Release(word)

		return nil, fmt.Errorf("%w: save link: %v", ErrStorage, err)
	}

	return link, nil
}

// Lookup resolves a word to its destination URL. Expired links are reported
// as ErrNotFound, identically to words that were never assigned, and are
// reclaimed on the spot rather than waiting for the next sweep.
func (e *Engine) Lookup(ctx context.Context, word Word) (string, error) {
	link, err := e.store.GetByWord(ctx, word)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("%w: get link: %v", ErrStorage, err)
	}

	if link.Expired(e.now()) {
		e.reclaim(context.WithoutCancel(ctx), word)

		return "", ErrNotFound
	}

	return link.URL, nil
}

// Sweep runs one reclamation pass: every expired record is deleted and its
// word returned to the pool. A failed deletion is logged and retried on the
// next pass; it never aborts the rest of the sweep.
func (e *Engine) Sweep(ctx context.Context) {
	links, err := e.store.ScanExpired(ctx, e.now())
	if err != nil {
		e.logger.Error("sweep scan failed", zap.Error(err))

		return
	}

	reclaimed := 0

	for _, link := range links {
		if e.reclaim(ctx, link.Word) {
			reclaimed++
		}
	}

	if reclaimed > 0 {
		e.logger.Info("sweep reclaimed words",
			zap.Int("reclaimed", reclaimed),
			zap.Int("free", e.pool.Free()),
		)
	}
}

// Close stops the reclamation sweep and waits for it to finish.
// Safe to call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		if e.cancel != nil {
			e.cancel()
			<-e.done
		}
	})
}

// Shutdown implements the container's shutdown contract.
func (e *Engine) Shutdown() error {
	e.Close()

	return nil
}

func (e *Engine) sweepLoop(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sweep(ctx)
		}
	}
}

// reclaim deletes an expired record and frees its word. The delete is
// conditional on the record still being expired, so a word that a concurrent
// Shorten re-allocated after this pass began is left alone. Reports whether
// the word was freed.
func (e *Engine) reclaim(ctx context.Context, word Word) bool {
	deleted, err := e.store.DeleteExpired(ctx, word, e.now())
	if err != nil {
		e.logger.Error("failed to delete expired link",
			zap.String("word", string(word)),
			zap.Error(err),
		)

		return false
	}

	if !deleted {
		return false
	}

	e.pool.Release(word)

	return true
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	return nil
}
