package mail

import (
	"context"

	"github.com/engineerTimber/littleYBJ/internal/domain"
)

// Source yields candidate messages for the poll pipeline.
type Source interface {
	// Search returns up to limit of the most recent inbox messages,
	// newest first. The keyword is a narrowing hint only; callers own
	// the authoritative subject/sender match because the per-category
	// case rules live with them. Individually unreadable messages are
	// skipped, not fatal.
	Search(ctx context.Context, keyword string, limit int) ([]domain.MailItem, error)
}
