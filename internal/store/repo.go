package store

import (
	"context"
	"errors"

	"github.com/engineerTimber/littleYBJ/internal/domain"
)

// ErrNotFound reports that no record matched the requested name.
// It is distinct from store unavailability, which surfaces as any
// other non-nil error.
var ErrNotFound = errors.New("store: record not found")

// Repo defines the typed record-store operations: one accessor set per
// record kind (timers, watermarks, ideas), all keyed by name. Deletes
// archive records rather than removing rows.
type Repo interface {
	GetTimer(ctx context.Context, name string) (domain.Timer, error)
	ListPersonalTimers(ctx context.Context) ([]domain.Timer, error)
	CreateTimer(ctx context.Context, t domain.Timer) error
	PatchTimerTime(ctx context.Context, name string, hour, minute int) error
	ArchiveTimers(ctx context.Context, names []string) error

	GetWatermark(ctx context.Context, category string) (string, error)
	PutWatermark(ctx context.Context, category, lastSubject string) error

	ListIdeas(ctx context.Context) ([]domain.Idea, error)
	CreateIdea(ctx context.Context, idea domain.Idea) error
	ArchiveIdea(ctx context.Context, title string) error

	Close() error
}
