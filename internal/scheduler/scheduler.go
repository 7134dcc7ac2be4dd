package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/engineerTimber/littleYBJ/internal/domain"
)

// Poller runs the poll-and-notify pipeline over all categories.
// pipeline.Pipeline implements it.
type Poller interface {
	PollAll(ctx context.Context)
}

// ReminderSender delivers a personal timer reminder to the owner.
// The Telegram router implements it.
type ReminderSender interface {
	Remind(timerName string) error
}

// Registry is the read side of the timer set the loop evaluates.
type Registry interface {
	List() []domain.Timer
}

// Scheduler fires timers whose hour:minute exactly equals the tick's
// wall-clock minute. The loop itself is stateless: no timer carries
// state across ticks, and a minute skipped over (process pause, slow
// host) is silently missed rather than caught up.
type Scheduler struct {
	reg  Registry
	pipe Poller
	rem  ReminderSender
	log  *zap.Logger
}

func New(reg Registry, pipe Poller, rem ReminderSender, log *zap.Logger) *Scheduler {
	return &Scheduler{reg: reg, pipe: pipe, rem: rem, log: log}
}

// Run drives the loop until ctx is canceled. Each tick targets the
// next wall-minute boundary — the scheduled time, not elapsed time
// since the last fire — so slow I/O inside a tick cannot drift the
// cadence.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := time.Now().Truncate(time.Minute).Add(time.Minute)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("scheduler stopping")
			return
		case <-timer.C:
			// Tick work runs off the driver goroutine so one slow
			// category fetch cannot starve the cadence.
			go s.fire(ctx, next)
		}
	}
}

// fire evaluates every timer in the current registry snapshot against
// the scheduled tick time. Mail timers trigger a full category poll;
// personal timers trigger a plain reminder with no dedup.
func (s *Scheduler) fire(ctx context.Context, now time.Time) {
	for _, t := range s.reg.List() {
		if !t.DueAt(now) {
			continue
		}
		switch t.Kind {
		case domain.KindMail:
			s.log.Info("mail timer fired", zap.String("timer", t.Name))
			s.pipe.PollAll(ctx)
		case domain.KindPersonal:
			s.log.Info("personal timer fired", zap.String("timer", t.Name))
			if err := s.rem.Remind(t.Name); err != nil {
				s.log.Error("reminder failed", zap.String("timer", t.Name), zap.Error(err))
			}
		}
	}
}
