package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath   string `envconfig:"DB_PATH" default:"./data/littleybj.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"` // keep-alive endpoint

	IMAPHost     string `envconfig:"IMAP_HOST" default:"imap.gmail.com"`
	IMAPPort     int    `envconfig:"IMAP_PORT" default:"993"`
	IMAPUsername string `envconfig:"IMAP_USERNAME" required:"true"`
	IMAPPassword string `envconfig:"IMAP_PASSWORD" required:"true"`

	MailChatID   int64 `envconfig:"MAIL_CHAT_ID" required:"true"`
	TimerChatID  int64 `envconfig:"TIMER_CHAT_ID" required:"true"`
	IdeaChatID   int64 `envconfig:"IDEA_CHAT_ID" required:"true"`
	SystemChatID int64 `envconfig:"SYSTEM_CHAT_ID" required:"true"`
	OwnerID      int64 `envconfig:"OWNER_ID" required:"true"` // mentioned by personal reminders

	CategoriesPath string `envconfig:"CATEGORIES_PATH" default:"./categories.yaml"`
	FetchWindow    int    `envconfig:"FETCH_WINDOW" default:"30"` // latest-N mail window per poll
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
