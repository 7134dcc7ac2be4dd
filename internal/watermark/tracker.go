package watermark

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/engineerTimber/littleYBJ/internal/store"
)

// Tracker caches the last notified subject per category and writes
// every advance through to the store. The store is the durable source
// of truth; the cache exists so a flaky store read never blanks the
// dedup boundary mid-flight.
type Tracker struct {
	repo store.Repo
	log  *zap.Logger

	mu   sync.Mutex
	last map[string]string
}

func NewTracker(repo store.Repo, log *zap.Logger) *Tracker {
	return &Tracker{
		repo: repo,
		log:  log,
		last: make(map[string]string),
	}
}

// Load refreshes the cache for the given categories. A category with
// no stored row starts with an empty watermark, which downstream dedup
// treats as "notify everything". On a store error the prior cached
// value is retained and the first error is reported.
func (t *Tracker) Load(ctx context.Context, categories []string) error {
	var firstErr error
	for _, cat := range categories {
		subject, err := t.repo.GetWatermark(ctx, cat)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			t.log.Warn("watermark load failed", zap.String("category", cat), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("load watermark %q: %w", cat, err)
			}
			continue
		}
		t.mu.Lock()
		t.last[cat] = subject
		t.mu.Unlock()
	}
	return firstErr
}

// Last returns the cached watermark for a category ("" if none).
func (t *Tracker) Last(category string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last[category]
}

// Advance persists the new watermark, then updates the cache. Callers
// advance before delivering, so a crash between the two drops at most
// one notification instead of duplicating it. On a store error the
// cache keeps its prior value and the error is returned.
func (t *Tracker) Advance(ctx context.Context, category, subject string) error {
	if err := t.repo.PutWatermark(ctx, category, subject); err != nil {
		return fmt.Errorf("put watermark %q: %w", category, err)
	}
	t.mu.Lock()
	t.last[category] = subject
	t.mu.Unlock()
	return nil
}
