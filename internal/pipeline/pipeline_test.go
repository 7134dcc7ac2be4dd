package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/engineerTimber/littleYBJ/internal/config"
	"github.com/engineerTimber/littleYBJ/internal/domain"
	"github.com/engineerTimber/littleYBJ/internal/store"
	"github.com/engineerTimber/littleYBJ/internal/watermark"
)

type fakeSource struct {
	items []domain.MailItem
	err   error
}

func (f *fakeSource) Search(context.Context, string, int) ([]domain.MailItem, error) {
	return f.items, f.err
}

type fakeDeliverer struct {
	sent []string
	err  error
}

func (f *fakeDeliverer) Deliver(_ int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

// markRepo is a store.Repo stub carrying only watermark state.
type markRepo struct {
	marks map[string]string
	err   error
}

func newMarkRepo() *markRepo { return &markRepo{marks: make(map[string]string)} }

func (m *markRepo) GetWatermark(_ context.Context, cat string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	s, ok := m.marks[cat]
	if !ok {
		return "", store.ErrNotFound
	}
	return s, nil
}

func (m *markRepo) PutWatermark(_ context.Context, cat, subject string) error {
	if m.err != nil {
		return m.err
	}
	m.marks[cat] = subject
	return nil
}

func (m *markRepo) GetTimer(context.Context, string) (domain.Timer, error) {
	return domain.Timer{}, store.ErrNotFound
}
func (m *markRepo) ListPersonalTimers(context.Context) ([]domain.Timer, error) { return nil, nil }
func (m *markRepo) CreateTimer(context.Context, domain.Timer) error            { return nil }
func (m *markRepo) PatchTimerTime(context.Context, string, int, int) error     { return nil }
func (m *markRepo) ArchiveTimers(context.Context, []string) error              { return nil }
func (m *markRepo) ListIdeas(context.Context) ([]domain.Idea, error)           { return nil, nil }
func (m *markRepo) CreateIdea(context.Context, domain.Idea) error              { return nil }
func (m *markRepo) ArchiveIdea(context.Context, string) error                  { return nil }
func (m *markRepo) Close() error                                               { return nil }

func item(sender, subject string) domain.MailItem {
	return domain.MailItem{Sender: sender, Subject: subject}
}

func newPipeline(t *testing.T, src *fakeSource, out *fakeDeliverer, repo *markRepo, cats ...config.Category) (*Pipeline, *watermark.Tracker) {
	t.Helper()
	marks := watermark.NewTracker(repo, zap.NewNop())
	p := New(src, marks, out, zap.NewNop(), cats, 30, 42)
	if err := marks.Load(context.Background(), p.CategoryNames()); err != nil {
		t.Fatalf("load watermarks: %v", err)
	}
	return p, marks
}

func TestPollCategory_NotifiesAndAdvances(t *testing.T) {
	src := &fakeSource{items: []domain.MailItem{
		item("uni <no-reply@abc.edu>", "Subject S"),
		item("uni <no-reply@abc.edu>", "Subject A"),
		item("shop <ads@shop.com>", "unrelated"),
	}}
	out := &fakeDeliverer{}
	repo := newMarkRepo()
	repo.marks["school"] = "Subject A"
	cat := config.Category{Name: "school", Keyword: "abc.edu"}
	p, marks := newPipeline(t, src, out, repo, cat)

	if err := p.PollCategory(context.Background(), cat); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(out.sent) != 1 || !strings.Contains(out.sent[0], "Subject S") {
		t.Fatalf("want one notice with Subject S, got %v", out.sent)
	}
	if strings.Contains(out.sent[0], "Subject A") {
		t.Fatal("already-seen item must not be re-notified")
	}
	if got := marks.Last("school"); got != "Subject S" {
		t.Fatalf("watermark not advanced: %q", got)
	}
}

func TestPollCategory_NothingNewNoDelivery(t *testing.T) {
	src := &fakeSource{items: []domain.MailItem{item("a@b.c", "Subject S")}}
	out := &fakeDeliverer{}
	repo := newMarkRepo()
	repo.marks["school"] = "Subject S"
	cat := config.Category{Name: "school", Keyword: "b.c"}
	p, marks := newPipeline(t, src, out, repo, cat)

	if err := p.PollCategory(context.Background(), cat); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(out.sent) != 0 {
		t.Fatalf("no delivery expected, got %v", out.sent)
	}
	if got := marks.Last("school"); got != "Subject S" {
		t.Fatalf("watermark must be unchanged, got %q", got)
	}
}

func TestPollCategory_FetchFailureLeavesWatermark(t *testing.T) {
	src := &fakeSource{err: errors.New("imap down")}
	out := &fakeDeliverer{}
	repo := newMarkRepo()
	repo.marks["school"] = "Subject A"
	cat := config.Category{Name: "school", Keyword: "x"}
	p, marks := newPipeline(t, src, out, repo, cat)

	if err := p.PollCategory(context.Background(), cat); err == nil {
		t.Fatal("want fetch error")
	}
	if len(out.sent) != 0 {
		t.Fatal("no delivery on fetch failure")
	}
	if got := marks.Last("school"); got != "Subject A" {
		t.Fatalf("watermark moved on failed fetch: %q", got)
	}
}

func TestPollCategory_AdvancesBeforeDelivery(t *testing.T) {
	// Delivery failure after a successful advance is the accepted
	// at-most-once outcome: the notice is dropped, never duplicated.
	src := &fakeSource{items: []domain.MailItem{item("a@b.c", "Subject S")}}
	out := &fakeDeliverer{err: errors.New("chat down")}
	repo := newMarkRepo()
	cat := config.Category{Name: "school", Keyword: "b.c"}
	p, marks := newPipeline(t, src, out, repo, cat)

	if err := p.PollCategory(context.Background(), cat); err == nil {
		t.Fatal("want delivery error")
	}
	if got := marks.Last("school"); got != "Subject S" {
		t.Fatalf("watermark must advance before delivery, got %q", got)
	}
}

func TestPollCategory_CaseRules(t *testing.T) {
	src := &fakeSource{items: []domain.MailItem{
		item("a@b.c", "HELLO world"),
		item("a@b.c", "hello world"),
	}}

	// Case-sensitive category matches only the exact-case subject.
	out := &fakeDeliverer{}
	cat := config.Category{Name: "strict", Keyword: "hello"}
	p, _ := newPipeline(t, src, out, newMarkRepo(), cat)
	if err := p.PollCategory(context.Background(), cat); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(out.sent) != 1 || strings.Contains(out.sent[0], "HELLO world") {
		t.Fatalf("case-sensitive match leaked: %v", out.sent)
	}

	// Folded category matches both.
	out = &fakeDeliverer{}
	cat = config.Category{Name: "folded", Keyword: "hello", MatchFold: true,
		Classify: map[string]string{}}
	p, _ = newPipeline(t, src, out, newMarkRepo(), cat)
	if err := p.PollCategory(context.Background(), cat); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(out.sent) != 1 || !strings.Contains(out.sent[0], "HELLO world") ||
		!strings.Contains(out.sent[0], "hello world") {
		t.Fatalf("folded match missed items: %v", out.sent)
	}
}

func TestPollCategory_UnmappedSenderGetsUnknownLabel(t *testing.T) {
	src := &fakeSource{items: []domain.MailItem{
		item("Prof Lin <lin@abc.edu>", "Course notes /"),
		item("Stranger <who@else.org>", "Office hours /"),
	}}
	out := &fakeDeliverer{}
	cat := config.Category{Name: "course", Keyword: "/", MatchFold: true,
		Classify: map[string]string{"lin@abc.edu": "Algorithms"}}
	p, _ := newPipeline(t, src, out, newMarkRepo(), cat)

	if err := p.PollCategory(context.Background(), cat); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(out.sent) != 1 {
		t.Fatalf("want one notice, got %v", out.sent)
	}
	if !strings.Contains(out.sent[0], "Algorithms") {
		t.Fatal("mapped sender label missing")
	}
	if !strings.Contains(out.sent[0], domain.UnknownLabel) {
		t.Fatal("unmapped sender must get the unknown label, not be dropped")
	}
}

func TestSearchNow_Undeduplicated(t *testing.T) {
	src := &fakeSource{items: []domain.MailItem{
		item("a@b.c", "invoice 1"),
		item("a@b.c", "invoice 2"),
	}}
	out := &fakeDeliverer{}
	p, marks := newPipeline(t, src, out, newMarkRepo())

	if err := p.SearchNow(context.Background(), "invoice", 7); err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(out.sent) != 1 || !strings.Contains(out.sent[0], "invoice 1") ||
		!strings.Contains(out.sent[0], "invoice 2") {
		t.Fatalf("want both matches, got %v", out.sent)
	}
	if got := marks.Last("invoice"); got != "" {
		t.Fatalf("ad-hoc search must not touch watermarks, got %q", got)
	}
}
