package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/engineerTimber/littleYBJ/internal/domain"
	"github.com/engineerTimber/littleYBJ/internal/store"
)

// Defaults used to seed a fresh store: morning and evening mail checks.
var fixedDefaults = []domain.Timer{
	{Name: domain.MailTimerMorning, Hour: 8, Minute: 0, Kind: domain.KindMail},
	{Name: domain.MailTimerEvening, Hour: 20, Minute: 0, Kind: domain.KindMail},
}

// Registry is the sole in-memory owner of timer state. Every mutation
// writes to the store and then reloads the full set, so the only
// states a reader can observe are "old set" and "new set after a
// successful reload". One mutex serializes mutations and reloads; two
// concurrent refreshes never interleave into a torn snapshot.
type Registry struct {
	repo store.Repo
	log  *zap.Logger

	mu     sync.Mutex
	timers []domain.Timer // fixed mail timers first, then store discovery order
}

func New(repo store.Repo, log *zap.Logger) *Registry {
	return &Registry{repo: repo, log: log}
}

// Load replaces the in-memory set with the store contents: the two
// fixed mail timers by reserved name, plus every personal timer
// record. Fails open: on a store error the previous snapshot is
// retained and the error reported.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(ctx)
}

func (r *Registry) loadLocked(ctx context.Context) error {
	next := make([]domain.Timer, 0, len(r.timers)+1)

	for _, def := range fixedDefaults {
		t, err := r.repo.GetTimer(ctx, def.Name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// Fresh store: seed the fixed timer with its default time.
			if err := r.repo.CreateTimer(ctx, def); err != nil {
				return fmt.Errorf("seed %s: %w", def.Name, err)
			}
			t = def
		case err != nil:
			return fmt.Errorf("load %s: %w", def.Name, err)
		}
		t.Kind = domain.KindMail
		next = append(next, t)
	}

	personal, err := r.repo.ListPersonalTimers(ctx)
	if err != nil {
		return fmt.Errorf("load personal timers: %w", err)
	}
	next = append(next, personal...)

	r.timers = next
	return nil
}

// List returns a copy of the current snapshot, mail timers first.
func (r *Registry) List() []domain.Timer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Timer, len(r.timers))
	copy(out, r.timers)
	return out
}

// Add creates a personal timer. The name must be unused across both
// mail and personal timers.
func (r *Registry) Add(ctx context.Context, name string, hour, minute int) error {
	t := domain.Timer{Name: name, Hour: hour, Minute: minute, Kind: domain.KindPersonal}
	if err := t.Validate(); err != nil {
		return err
	}
	if strings.HasPrefix(name, domain.MailTimerPrefix) {
		return fmt.Errorf("%w: %q is reserved", domain.ErrDuplicateName, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.timers {
		if existing.Name == name {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateName, name)
		}
	}
	if err := r.repo.CreateTimer(ctx, t); err != nil {
		return fmt.Errorf("create timer: %w", err)
	}
	return r.loadLocked(ctx)
}

// Update patches hour and minute of an existing timer (mail timers
// included; only their deletion is protected).
func (r *Registry) Update(ctx context.Context, name string, hour, minute int) error {
	if err := (domain.Timer{Name: name, Hour: hour, Minute: minute}).Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.repo.PatchTimerTime(ctx, name, hour, minute); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %q", domain.ErrTimerNotFound, name)
		}
		return fmt.Errorf("patch timer: %w", err)
	}
	return r.loadLocked(ctx)
}

// Delete archives the named personal timers. The whole batch is
// rejected before any archive if it names a fixed mail timer or an
// unknown timer.
func (r *Registry) Delete(ctx context.Context, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Protection wins over not-found so a mixed batch reports the
	// definitive rejection.
	for _, name := range names {
		if t, ok := r.findLocked(name); ok && t.Kind == domain.KindMail {
			return fmt.Errorf("%w: %q", domain.ErrProtectedTimer, name)
		}
	}
	for _, name := range names {
		if _, ok := r.findLocked(name); !ok {
			return fmt.Errorf("%w: %q", domain.ErrTimerNotFound, name)
		}
	}
	if err := r.repo.ArchiveTimers(ctx, names); err != nil {
		return fmt.Errorf("archive timers: %w", err)
	}
	return r.loadLocked(ctx)
}

func (r *Registry) findLocked(name string) (domain.Timer, bool) {
	for _, t := range r.timers {
		if t.Name == name {
			return t, true
		}
	}
	return domain.Timer{}, false
}
