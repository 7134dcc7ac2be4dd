package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimerKind distinguishes the fixed mail-check timers from user-created
// reminders. Protection and deletion rules are a function of the kind,
// not of which container a timer happens to live in.
type TimerKind int

const (
	KindMail TimerKind = iota
	KindPersonal
)

// Reserved names of the fixed mail-check timers. The store query for
// personal timers excludes everything carrying the reserved prefix.
const (
	MailTimerPrefix  = "mail_timer"
	MailTimerMorning = "mail_timer1"
	MailTimerEvening = "mail_timer2"
)

var (
	ErrDuplicateName  = errors.New("timer name already taken")
	ErrTimerNotFound  = errors.New("timer not found")
	ErrProtectedTimer = errors.New("mail timers cannot be deleted")
	ErrInvalidTime    = errors.New("time out of range")
)

// KindForName derives the kind from the reserved name prefix.
func KindForName(name string) TimerKind {
	if strings.HasPrefix(name, MailTimerPrefix) {
		return KindMail
	}
	return KindPersonal
}

// Timer is one daily alarm. It fires during the single wall-clock
// minute matching Hour:Minute, at most once per day.
type Timer struct {
	Name   string
	Hour   int // 0..23
	Minute int // 0..59
	Kind   TimerKind
}

// Validate checks name presence and hour/minute ranges.
func (t Timer) Validate() error {
	if t.Name == "" {
		return errors.New("empty timer name")
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, t.Hour, t.Minute)
	}
	return nil
}

// DueAt reports whether the timer fires during the minute of now.
// Exact equality: a delayed or skipped tick across that minute means
// the firing for the day is missed, there is no catch-up.
func (t Timer) DueAt(now time.Time) bool {
	return now.Hour() == t.Hour && now.Minute() == t.Minute
}
