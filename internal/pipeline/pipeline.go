package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/engineerTimber/littleYBJ/internal/config"
	"github.com/engineerTimber/littleYBJ/internal/domain"
	"github.com/engineerTimber/littleYBJ/internal/mail"
	"github.com/engineerTimber/littleYBJ/internal/watermark"
)

// digestWindow is the fetch bound for the on-demand course digest,
// slightly wider than the regular poll window.
const digestWindow = 40

// Deliverer posts one batched notice to a chat. The Telegram router
// implements it; the pipeline stays frontend-agnostic.
type Deliverer interface {
	Deliver(chatID int64, text string) error
}

// Pipeline fetches candidate mail per category, filters it, strips
// already-notified items against the category watermark and delivers
// one batched notice per triggering cycle.
type Pipeline struct {
	source      mail.Source
	marks       *watermark.Tracker
	out         Deliverer
	log         *zap.Logger
	cats        []config.Category
	window      int
	defaultChat int64
}

func New(source mail.Source, marks *watermark.Tracker, out Deliverer, log *zap.Logger,
	cats []config.Category, window int, defaultChat int64) *Pipeline {
	return &Pipeline{
		source:      source,
		marks:       marks,
		out:         out,
		log:         log,
		cats:        cats,
		window:      window,
		defaultChat: defaultChat,
	}
}

// CategoryNames lists the configured category names, e.g. for loading
// their watermarks at startup.
func (p *Pipeline) CategoryNames() []string {
	names := make([]string, 0, len(p.cats))
	for _, c := range p.cats {
		names = append(names, c.Name)
	}
	return names
}

// PollAll runs every configured category. A failing category is
// logged and skipped; its watermark stays put, so the next cycle
// re-evaluates from the same baseline.
func (p *Pipeline) PollAll(ctx context.Context) {
	for _, cat := range p.cats {
		if err := p.PollCategory(ctx, cat); err != nil {
			p.log.Warn("category poll failed",
				zap.String("category", cat.Name), zap.Error(err))
		}
	}
}

// PollCategory performs one fetch-filter-dedup-notify cycle for a
// category. The watermark is persisted before delivery: a crash in
// between drops at most one notice rather than duplicating it.
func (p *Pipeline) PollCategory(ctx context.Context, cat config.Category) error {
	items, err := p.source.Search(ctx, cat.Keyword, p.window)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	matched := make([]domain.MailItem, 0, len(items))
	for _, it := range items {
		if !matchKeyword(it, cat.Keyword, cat.MatchFold) {
			continue
		}
		if cat.Classify != nil {
			it.Label = classifySender(it.Sender, cat.Classify)
		}
		matched = append(matched, it)
	}

	fresh := domain.SelectNew(matched, p.marks.Last(cat.Name))
	if len(fresh) == 0 {
		return nil
	}

	if err := p.marks.Advance(ctx, cat.Name, fresh[0].Subject); err != nil {
		return err
	}
	if err := p.out.Deliver(p.chatFor(cat), formatNotice(cat.Name+" mail", fresh)); err != nil {
		return fmt.Errorf("deliver: %w", err)
	}
	p.log.Info("notified new mail",
		zap.String("category", cat.Name), zap.Int("count", len(fresh)))
	return nil
}

// SearchNow runs an undeduplicated keyword search over the fetch
// window and delivers the matches (or a miss note) to the given chat.
func (p *Pipeline) SearchNow(ctx context.Context, keyword string, chatID int64) error {
	items, err := p.source.Search(ctx, keyword, p.window)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	matched := make([]domain.MailItem, 0, len(items))
	for _, it := range items {
		if matchKeyword(it, keyword, false) {
			matched = append(matched, it)
		}
	}
	if len(matched) == 0 {
		return p.out.Deliver(chatID, fmt.Sprintf("🔍 No mail matching %q in the latest %d messages.", keyword, p.window))
	}
	return p.out.Deliver(chatID, formatNotice(fmt.Sprintf("mail matching %q", keyword), matched))
}

// CourseDigest delivers an undeduplicated digest of the labeled
// (course) stream, with a slightly wider window.
func (p *Pipeline) CourseDigest(ctx context.Context, chatID int64) error {
	var cat *config.Category
	for i := range p.cats {
		if p.cats[i].Classify != nil {
			cat = &p.cats[i]
			break
		}
	}
	if cat == nil {
		return p.out.Deliver(chatID, "No labeled mail stream is configured.")
	}

	items, err := p.source.Search(ctx, cat.Keyword, digestWindow)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	matched := make([]domain.MailItem, 0, len(items))
	for _, it := range items {
		if !matchKeyword(it, cat.Keyword, cat.MatchFold) {
			continue
		}
		it.Label = classifySender(it.Sender, cat.Classify)
		matched = append(matched, it)
	}
	if len(matched) == 0 {
		return p.out.Deliver(chatID, "🔍 No recent course mail.")
	}
	return p.out.Deliver(chatID, formatNotice("recent course mail", matched))
}

func (p *Pipeline) chatFor(cat config.Category) int64 {
	if cat.ChatID != 0 {
		return cat.ChatID
	}
	return p.defaultChat
}

// matchKeyword checks the keyword against subject or sender; fold
// selects case-insensitive matching.
func matchKeyword(it domain.MailItem, keyword string, fold bool) bool {
	if fold {
		kw := strings.ToLower(keyword)
		return strings.Contains(strings.ToLower(it.Subject), kw) ||
			strings.Contains(strings.ToLower(it.Sender), kw)
	}
	return strings.Contains(it.Subject, keyword) || strings.Contains(it.Sender, keyword)
}

// classifySender maps a sender to its configured label; senders with
// no matching fragment get the fixed unknown label. Classification
// never drops an item.
func classifySender(sender string, classify map[string]string) string {
	for frag, label := range classify {
		if strings.Contains(sender, frag) {
			return label
		}
	}
	return domain.UnknownLabel
}

// formatNotice renders one batched notice: sender, subject and the
// optional label per item.
func formatNotice(title string, items []domain.MailItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📬 <%s>\n\n", title)
	for _, it := range items {
		if it.Label != "" {
			fmt.Fprintf(&b, "📚 Course: %s\n", it.Label)
		}
		fmt.Fprintf(&b, "📩 From: %s\n📌 Subject: %s\n\n", it.Sender, it.Subject)
	}
	return strings.TrimRight(b.String(), "\n")
}
