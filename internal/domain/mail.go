package domain

import "time"

// UnknownLabel is attached to items whose sender has no classification
// entry. Classification never drops an item.
const UnknownLabel = "unknown"

// MailItem is one candidate message as reported by the mail source.
type MailItem struct {
	Sender  string
	Subject string
	Date    time.Time
	Label   string // optional, set by category classification
}

// SelectNew returns the prefix of items not yet notified, given items
// ordered newest to oldest and the last notified subject for the
// category. The scan stops at the first subject equal to lastSeen;
// that item and everything older count as already seen.
//
// When lastSeen appears nowhere in the fetch (first run, or more new
// mail arrived than the window covers), every item is returned:
// unmatched dedup state deliberately fails open toward notifying.
func SelectNew(items []MailItem, lastSeen string) []MailItem {
	var fresh []MailItem
	for _, it := range items {
		if it.Subject == lastSeen {
			break
		}
		fresh = append(fresh, it)
	}
	return fresh
}
