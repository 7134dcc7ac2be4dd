package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/engineerTimber/littleYBJ/internal/config"
	"github.com/engineerTimber/littleYBJ/internal/mail"
	"github.com/engineerTimber/littleYBJ/internal/pipeline"
	"github.com/engineerTimber/littleYBJ/internal/registry"
	"github.com/engineerTimber/littleYBJ/internal/scheduler"
	"github.com/engineerTimber/littleYBJ/internal/store"
	"github.com/engineerTimber/littleYBJ/internal/telegram"
	"github.com/engineerTimber/littleYBJ/internal/watermark"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
	sched   *scheduler.Scheduler
}

// New authenticates against Telegram and prepares the keep-alive
// server. A bad bot token fails here, before anything is scheduled.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("littleYBJ is running!"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

// Run wires the components and drives the update loop until a signal
// arrives. Credential problems (Telegram, IMAP) and an unreachable
// store are fatal here; once the scheduler is running, I/O failures
// are logged and retried on later cycles instead.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting littleYBJ",
		zap.String("http", a.cfg.HTTPAddr),
		zap.Int("fetch_window", a.cfg.FetchWindow),
	)

	cats, err := config.LoadCategories(a.cfg.CategoriesPath)
	if err != nil {
		a.log.Error("load categories failed", zap.Error(err))
		return err
	}

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	// Probe the mailbox credentials; a broken login must not reach
	// the scheduler.
	source := mail.NewIMAPSource(mail.IMAPConfig{
		Host:     a.cfg.IMAPHost,
		Port:     a.cfg.IMAPPort,
		Username: a.cfg.IMAPUsername,
		Password: a.cfg.IMAPPassword,
	}, a.log.With(zap.String("comp", "imap")))
	if err := source.Ping(ctx); err != nil {
		a.log.Error("imap auth failed", zap.Error(err))
		return err
	}

	reg := registry.New(repo, a.log.With(zap.String("comp", "registry")))
	if err := reg.Load(ctx); err != nil {
		a.log.Error("initial timer load failed", zap.Error(err))
		return err
	}

	marks := watermark.NewTracker(repo, a.log.With(zap.String("comp", "watermark")))

	chats := telegram.Chats{
		Mail:   a.cfg.MailChatID,
		Timer:  a.cfg.TimerChatID,
		Idea:   a.cfg.IdeaChatID,
		System: a.cfg.SystemChatID,
		Owner:  a.cfg.OwnerID,
	}
	sender := telegram.NewSender(a.bot, chats)

	pipe := pipeline.New(source, marks, sender, a.log.With(zap.String("comp", "pipeline")),
		cats, a.cfg.FetchWindow, chats.Mail)

	// Missing watermark rows just mean "notify everything" on the
	// first poll; only a store failure is worth a warning.
	if err := marks.Load(ctx, pipe.CategoryNames()); err != nil {
		a.log.Warn("watermark preload incomplete", zap.Error(err))
	}

	a.router = telegram.NewRouter(a.bot, a.log.With(zap.String("comp", "router")), repo, reg, pipe, chats)
	a.sched = scheduler.New(reg, pipe, sender, a.log.With(zap.String("comp", "scheduler")))

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.sched.Run(ctx)
	a.router.Announce(startupNote)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

const startupNote = "littleYBJ is up and running!"
