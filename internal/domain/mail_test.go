package domain

import "testing"

// helper: build items newest-first from subjects only
func itemsOf(t *testing.T, subjects ...string) []MailItem {
	t.Helper()
	items := make([]MailItem, 0, len(subjects))
	for _, s := range subjects {
		items = append(items, MailItem{Sender: "someone@example.com", Subject: s})
	}
	return items
}

func subjectsOf(items []MailItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Subject)
	}
	return out
}

func TestSelectNew_StopsAtWatermark(t *testing.T) {
	got := SelectNew(itemsOf(t, "Subject S", "Subject A", "Subject B"), "Subject A")
	want := []string{"Subject S"}
	if gs := subjectsOf(got); len(gs) != 1 || gs[0] != want[0] {
		t.Fatalf("want %v, got %v", want, gs)
	}
}

func TestSelectNew_NewestAlreadySeen(t *testing.T) {
	got := SelectNew(itemsOf(t, "Subject S", "Subject A"), "Subject S")
	if len(got) != 0 {
		t.Fatalf("want empty, got %v", subjectsOf(got))
	}
}

func TestSelectNew_WatermarkOutsideWindowFailsOpen(t *testing.T) {
	got := SelectNew(itemsOf(t, "Subject S", "Subject A"), "Subject Z")
	gs := subjectsOf(got)
	if len(gs) != 2 || gs[0] != "Subject S" || gs[1] != "Subject A" {
		t.Fatalf("want all items, got %v", gs)
	}
}

func TestSelectNew_EmptyWatermarkFailsOpen(t *testing.T) {
	// First run: no watermark stored yet.
	got := SelectNew(itemsOf(t, "Subject S", "Subject A"), "")
	if len(got) != 2 {
		t.Fatalf("want all items, got %v", subjectsOf(got))
	}
}

func TestSelectNew_NoItems(t *testing.T) {
	if got := SelectNew(nil, "Subject A"); len(got) != 0 {
		t.Fatalf("want empty, got %v", subjectsOf(got))
	}
}
