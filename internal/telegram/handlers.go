package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/engineerTimber/littleYBJ/internal/domain"
	"github.com/engineerTimber/littleYBJ/internal/store"
)

// --- Mail commands ---

// handleMail with keywords runs ad-hoc searches; without keywords it
// runs the full category poll, same as a mail timer firing.
func (r *Router) handleMail(ctx context.Context, keywords []string) {
	if len(keywords) == 0 {
		r.pipe.PollAll(ctx)
		r.sendText(r.chats.Mail, mailCheckDoneText)
		return
	}
	for _, kw := range keywords {
		if err := r.pipe.SearchNow(ctx, kw, r.chats.Mail); err != nil {
			r.log.Warn("mail search failed", zap.String("keyword", kw), zap.Error(err))
			r.sendText(r.chats.Mail, mailFetchFailedText)
		}
	}
}

func (r *Router) handleCourseMail(ctx context.Context) {
	if err := r.pipe.CourseDigest(ctx, r.chats.Mail); err != nil {
		r.log.Warn("course digest failed", zap.Error(err))
		r.sendText(r.chats.Mail, mailFetchFailedText)
	}
}

// --- Timer commands ---

func (r *Router) handleTimers() {
	timers := r.reg.List()
	var b strings.Builder
	b.WriteString(timerListTitle)
	for _, t := range timers {
		fmt.Fprintf(&b, "🕰️ %s — %s\n", t.Name, domain.FormatHHMM(t.Hour, t.Minute))
	}
	r.sendText(r.chats.Timer, b.String())
}

func (r *Router) handleAddTimer(ctx context.Context, chatID int64, args []string) {
	name, hour, minute, ok := parseTimerArgs(args)
	if !ok {
		r.sendText(chatID, "Usage: /addtimer <name> <HH:MM>")
		return
	}
	if err := r.reg.Add(ctx, name, hour, minute); err != nil {
		r.sendText(chatID, timerErrText(err))
		return
	}
	r.sendText(chatID, fmt.Sprintf("✅ Added %s at %s.", name, domain.FormatHHMM(hour, minute)))
}

func (r *Router) handleSetTimer(ctx context.Context, chatID int64, args []string) {
	name, hour, minute, ok := parseTimerArgs(args)
	if !ok {
		r.sendText(chatID, "Usage: /settimer <name> <HH:MM>")
		return
	}
	if err := r.reg.Update(ctx, name, hour, minute); err != nil {
		r.sendText(chatID, timerErrText(err))
		return
	}
	r.sendText(chatID, fmt.Sprintf("✅ %s updated to %s.", name, domain.FormatHHMM(hour, minute)))
}

func (r *Router) handleDelTimer(ctx context.Context, chatID int64, names []string) {
	if len(names) == 0 {
		r.sendText(chatID, "Usage: /deltimer <name> [name...]")
		return
	}
	if err := r.reg.Delete(ctx, names); err != nil {
		r.sendText(chatID, timerErrText(err))
		return
	}
	r.sendText(chatID, fmt.Sprintf("✅ Deleted: %s.", strings.Join(names, ", ")))
}

func parseTimerArgs(args []string) (name string, hour, minute int, ok bool) {
	if len(args) != 2 {
		return "", 0, 0, false
	}
	hour, minute, err := domain.ParseHHMM(args[1])
	if err != nil {
		return "", 0, 0, false
	}
	return args[0], hour, minute, true
}

// timerErrText maps registry rejections to user-facing replies.
func timerErrText(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateName):
		return "❌ That timer name is already taken."
	case errors.Is(err, domain.ErrTimerNotFound):
		return "❌ No timer with that name."
	case errors.Is(err, domain.ErrProtectedTimer):
		return "❌ The mail timers cannot be deleted."
	case errors.Is(err, domain.ErrInvalidTime):
		return "❌ Time must be HH:MM within 00:00–23:59."
	default:
		return "❌ The record store did not respond; nothing was changed. Try again later."
	}
}

// --- Idea commands ---

func (r *Router) handleIdeas(ctx context.Context) {
	ideas, err := r.repo.ListIdeas(ctx)
	if err != nil {
		r.log.Warn("list ideas failed", zap.Error(err))
		r.sendText(r.chats.Idea, storeFailedText)
		return
	}
	if len(ideas) == 0 {
		r.sendText(r.chats.Idea, noIdeasText)
		return
	}
	var b strings.Builder
	b.WriteString(ideaListTitle)
	for _, idea := range ideas {
		fmt.Fprintf(&b, "💡 %s", idea.Title)
		if len(idea.Content) > len(idea.Title) {
			b.WriteString("...")
		}
		b.WriteString("\n")
	}
	r.sendText(r.chats.Idea, b.String())
}

// handleIdeaAdd offers to capture free text as an idea. The prompt
// waits for a ✅/❌ answer with a deadline; no answer means no.
func (r *Router) handleIdeaAdd(ctx context.Context, content string) {
	if content == "" {
		return
	}
	idea := domain.NewIdea(content)

	existing, err := r.repo.ListIdeas(ctx)
	if err != nil {
		r.log.Warn("list ideas failed", zap.Error(err))
		r.sendText(r.chats.Idea, storeFailedText)
		return
	}
	if hasIdeaTitle(existing, idea.Title) {
		r.sendText(r.chats.Idea, ideaExistsText)
		return
	}

	if !r.askConfirm(r.chats.Idea, "Save this as an idea?") {
		return
	}
	r.sendText(r.chats.Idea, r.saveIdea(ctx, idea))
}

// saveIdea persists a confirmed idea and returns the reply text. The
// title is checked again here: an idea saved during the confirm wait
// must read as a duplicate, not as a store failure.
func (r *Router) saveIdea(ctx context.Context, idea domain.Idea) string {
	existing, err := r.repo.ListIdeas(ctx)
	if err != nil {
		r.log.Warn("list ideas failed", zap.Error(err))
		return storeFailedText
	}
	if hasIdeaTitle(existing, idea.Title) {
		return ideaExistsText
	}
	if err := r.repo.CreateIdea(ctx, idea); err != nil {
		r.log.Warn("create idea failed", zap.Error(err))
		return storeFailedText
	}
	return ideaSavedText
}

func hasIdeaTitle(ideas []domain.Idea, title string) bool {
	for _, have := range ideas {
		if have.Title == title {
			return true
		}
	}
	return false
}

func (r *Router) handleDelIdea(ctx context.Context, chatID int64, title string) {
	if title == "" {
		r.sendText(chatID, "Usage: /delidea <title>")
		return
	}
	if err := r.repo.ArchiveIdea(ctx, title); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.sendText(r.chats.Idea, "❌ No idea with that title.")
			return
		}
		r.log.Warn("archive idea failed", zap.Error(err))
		r.sendText(r.chats.Idea, storeFailedText)
		return
	}
	r.sendText(r.chats.Idea, "✅ Idea deleted.")
}
