package mail

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"

	"github.com/engineerTimber/littleYBJ/internal/domain"
)

// IMAPConfig holds the mailbox credentials.
type IMAPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// IMAPSource reads the INBOX over IMAP. Every Search dials a fresh
// connection; polls are minutes apart, so keeping a session alive buys
// nothing and long-lived IMAP connections tend to get dropped anyway.
type IMAPSource struct {
	cfg IMAPConfig
	log *zap.Logger
}

func NewIMAPSource(cfg IMAPConfig, log *zap.Logger) *IMAPSource {
	return &IMAPSource{cfg: cfg, log: log}
}

// connect dials, logs in and selects INBOX read-only.
func (s *IMAPSource) connect() (*client.Client, *imap.MailboxStatus, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	cl, err := client.DialTLS(addr, &tls.Config{
		ServerName: s.cfg.Host,
		MinVersion: tls.VersionTLS12,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial imap server: %w", err)
	}
	if err := cl.Login(s.cfg.Username, s.cfg.Password); err != nil {
		_ = cl.Logout()
		return nil, nil, fmt.Errorf("imap login: %w", err)
	}
	mbox, err := cl.Select("INBOX", true)
	if err != nil {
		_ = cl.Logout()
		return nil, nil, fmt.Errorf("select inbox: %w", err)
	}
	return cl, mbox, nil
}

// Ping verifies the credentials work. Called once at startup; a
// failing login there is fatal, the bot must not start scheduling
// with a broken mailbox.
func (s *IMAPSource) Ping(ctx context.Context) error {
	cl, _, err := s.connect()
	if err != nil {
		return err
	}
	return cl.Logout()
}

// Search fetches envelopes of the latest `limit` messages and returns
// them newest first. The keyword is not pushed down to IMAP SEARCH:
// server-side SEARCH charset handling is unreliable for CJK keywords,
// so matching stays with the caller.
func (s *IMAPSource) Search(ctx context.Context, keyword string, limit int) ([]domain.MailItem, error) {
	cl, mbox, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer func() { _ = cl.Logout() }()

	if mbox.Messages == 0 || limit <= 0 {
		return nil, nil
	}

	from := uint32(1)
	if mbox.Messages > uint32(limit) {
		from = mbox.Messages - uint32(limit) + 1
	}
	seqSet := new(imap.SeqSet)
	seqSet.AddRange(from, mbox.Messages)

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- cl.Fetch(seqSet, []imap.FetchItem{imap.FetchEnvelope}, messages)
	}()

	var items []domain.MailItem
	for msg := range messages {
		if msg == nil || msg.Envelope == nil {
			// Unreadable message; skip it rather than abort the fetch.
			s.log.Debug("skipping message without envelope")
			continue
		}
		items = append(items, domain.MailItem{
			Sender:  formatSender(msg.Envelope),
			Subject: msg.Envelope.Subject,
			Date:    msg.Envelope.Date,
		})
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	// Fetch yields ascending sequence numbers; flip to newest first.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

// formatSender renders the first From address as "Name <addr>".
func formatSender(env *imap.Envelope) string {
	if len(env.From) == 0 {
		return ""
	}
	addr := env.From[0]
	if addr.PersonalName == "" {
		return addr.Address()
	}
	return fmt.Sprintf("%s <%s>", addr.PersonalName, addr.Address())
}
