package scheduler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/engineerTimber/littleYBJ/internal/domain"
)

type fakeRegistry struct{ timers []domain.Timer }

func (f *fakeRegistry) List() []domain.Timer { return f.timers }

type fakePoller struct{ polls int }

func (f *fakePoller) PollAll(context.Context) { f.polls++ }

type fakeReminder struct{ names []string }

func (f *fakeReminder) Remind(name string) error {
	f.names = append(f.names, name)
	return nil
}

func tick(t *testing.T, hh, mm int) time.Time {
	t.Helper()
	return time.Date(2025, time.May, 5, hh, mm, 0, 0, time.Local)
}

func newScheduler(timers ...domain.Timer) (*Scheduler, *fakePoller, *fakeReminder) {
	pipe := &fakePoller{}
	rem := &fakeReminder{}
	s := New(&fakeRegistry{timers: timers}, pipe, rem, zap.NewNop())
	return s, pipe, rem
}

func TestFire_ExactMinuteOnly(t *testing.T) {
	s, pipe, _ := newScheduler(
		domain.Timer{Name: domain.MailTimerMorning, Hour: 8, Minute: 0, Kind: domain.KindMail},
	)

	// Sweep the whole day: exactly one firing minute.
	for hh := 0; hh < 24; hh++ {
		for mm := 0; mm < 60; mm++ {
			s.fire(context.Background(), tick(t, hh, mm))
		}
	}
	if pipe.polls != 1 {
		t.Fatalf("want exactly one poll over the day, got %d", pipe.polls)
	}

	s.fire(context.Background(), tick(t, 8, 0))
	if pipe.polls != 2 {
		t.Fatal("want poll at 08:00")
	}
}

func TestFire_PersonalTimerSendsReminder(t *testing.T) {
	s, pipe, rem := newScheduler(
		domain.Timer{Name: "medicine", Hour: 13, Minute: 0, Kind: domain.KindPersonal},
	)

	s.fire(context.Background(), tick(t, 13, 0))
	if len(rem.names) != 1 || rem.names[0] != "medicine" {
		t.Fatalf("want one reminder for medicine, got %v", rem.names)
	}
	if pipe.polls != 0 {
		t.Fatal("personal timer must not trigger the mail pipeline")
	}

	s.fire(context.Background(), tick(t, 13, 1))
	if len(rem.names) != 1 {
		t.Fatal("must not fire outside the exact minute")
	}
}

func TestFire_MixedTimersSameMinute(t *testing.T) {
	s, pipe, rem := newScheduler(
		domain.Timer{Name: domain.MailTimerEvening, Hour: 20, Minute: 0, Kind: domain.KindMail},
		domain.Timer{Name: "stretch", Hour: 20, Minute: 0, Kind: domain.KindPersonal},
	)

	s.fire(context.Background(), tick(t, 20, 0))
	if pipe.polls != 1 {
		t.Fatalf("want one poll, got %d", pipe.polls)
	}
	if len(rem.names) != 1 || rem.names[0] != "stretch" {
		t.Fatalf("want one reminder, got %v", rem.names)
	}
}
