package oracle

import (
	"context"
	"fmt"
	"sync"

	"betting-market/internal/models"

	"github.com/shopspring/decimal"
)

// Reader supplies a price snapshot for a feed handle (e.g. "SOL/USD").
// Implementations must return models.ErrInvalidOracle when the handle is
// unknown or the feed value is missing, stale or unparsable.
type Reader interface {
	Read(ctx context.Context, handle string) (decimal.Decimal, error)
}

// Registry dispatches reads to the feed registered for each handle.
type Registry struct {
	mu    sync.RWMutex
	feeds map[string]Reader
}

func NewRegistry() *Registry {
	return &Registry{feeds: make(map[string]Reader)}
}

// Register binds a feed to a handle. Later registrations win.
func (r *Registry) Register(handle string, feed Reader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeds[handle] = feed
}

func (r *Registry) Read(ctx context.Context, handle string) (decimal.Decimal, error) {
	r.mu.RLock()
	feed, ok := r.feeds[handle]
	r.mu.RUnlock()

	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no feed registered for %q", models.ErrInvalidOracle, handle)
	}
	return feed.Read(ctx, handle)
}
