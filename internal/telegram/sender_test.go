package telegram

import (
	"strings"
	"testing"
)

func TestReminderText_EscapesMarkdown(t *testing.T) {
	got := reminderText(42, "take_meds")
	if !strings.Contains(got, `take\_meds`) {
		t.Fatalf("timer name not escaped: %q", got)
	}
	if !strings.Contains(got, "tg://user?id=42") {
		t.Fatalf("owner mention missing: %q", got)
	}
}

func TestReminderText_PlainNameUntouched(t *testing.T) {
	got := reminderText(42, "medicine")
	if !strings.Contains(got, ": medicine!") {
		t.Fatalf("plain name altered: %q", got)
	}
}
