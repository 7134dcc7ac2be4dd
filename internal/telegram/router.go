package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/engineerTimber/littleYBJ/internal/pipeline"
	"github.com/engineerTimber/littleYBJ/internal/registry"
	"github.com/engineerTimber/littleYBJ/internal/store"
)

// Chats holds the fixed destinations the bot posts to, plus the owner
// mentioned by personal reminders.
type Chats struct {
	Mail   int64
	Timer  int64
	Idea   int64
	System int64
	Owner  int64
}

// Router wires Telegram updates to command handlers.
type Router struct {
	bot   *tgbotapi.BotAPI
	log   *zap.Logger
	repo  store.Repo
	reg   *registry.Registry
	pipe  *pipeline.Pipeline
	chats Chats

	mu      sync.Mutex
	pending map[int]*confirmFuture // prompt messageID -> awaiting ✅/❌
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo,
	reg *registry.Registry, pipe *pipeline.Pipeline, chats Chats) *Router {
	return &Router{
		bot:     bot,
		log:     log,
		repo:    repo,
		reg:     reg,
		pipe:    pipe,
		chats:   chats,
		pending: make(map[int]*confirmFuture),
	}
}

// HandleUpdate routes a single update to the appropriate handler.
// Handlers touching IMAP or waiting on a confirmation run on their own
// goroutine so the update loop keeps draining.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)
		fields := strings.Fields(text)
		if len(fields) == 0 {
			return
		}
		verb, args := fields[0], fields[1:]

		switch verb {
		case "/start", "/help":
			r.sendText(chatID, helpText)
		case "/hello":
			r.sendText(chatID, helloText)
		case "/mail":
			go r.handleMail(ctx, args)
		case "/coursemail":
			go r.handleCourseMail(ctx)
		case "/timers":
			r.handleTimers()
		case "/addtimer":
			r.handleAddTimer(ctx, chatID, args)
		case "/settimer":
			r.handleSetTimer(ctx, chatID, args)
		case "/deltimer":
			r.handleDelTimer(ctx, chatID, args)
		case "/ideas":
			r.handleIdeas(ctx)
		case "/idea":
			go r.handleIdeaAdd(ctx, strings.TrimSpace(strings.TrimPrefix(text, "/idea")))
		case "/delidea":
			r.handleDelIdea(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/delidea")))
		default:
			// Free text in the idea chat is offered for capture.
			if chatID == r.chats.Idea && !strings.HasPrefix(text, "/") {
				go r.handleIdeaAdd(ctx, text)
			}
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		_, _ = r.bot.Request(tgbotapi.NewCallback(cb.ID, ""))
		if cb.Message == nil {
			return
		}

		switch cb.Data {
		case confirmYes:
			r.resolveConfirm(cb.Message.MessageID, true)
		case confirmNo:
			r.resolveConfirm(cb.Message.MessageID, false)
		default:
			// Unknown callback — ignore silently
		}
	}
}

// sendText posts without throttling; used for direct command replies.
func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Warn("send failed", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// Announce posts a startup note to the system chat.
func (r *Router) Announce(text string) {
	r.sendText(r.chats.System, text)
}
