package reminder_test

import (
	"strings"
	"testing"

	"clubify/internal/domain/reminder"
)

func TestCompose(t *testing.T) {
	items := []reminder.Item{
		{PlayerName: "Ana Trajkovska", TeamName: "U10", PeriodMonth: 4, PeriodYear: 2025, Outstanding: 1500, DueDate: "2025-04-05"},
		{PlayerName: "Ana Trajkovska", TeamName: "U10", PeriodMonth: 3, PeriodYear: 2025, Outstanding: 1000, DueDate: "2025-03-05"},
	}
	msg, err := reminder.Compose("parent@mail.mk", "FK Pelister", items)
	if err != nil {
		t.Fatalf("Compose() = %v", err)
	}
	if msg.To != "parent@mail.mk" || !strings.Contains(msg.Subject, "FK Pelister") {
		t.Errorf("message header = %+v", msg)
	}
	march := strings.Index(msg.Markdown, "03/2025")
	april := strings.Index(msg.Markdown, "04/2025")
	if march < 0 || april < 0 || march > april {
		t.Errorf("items not ordered oldest first:\n%s", msg.Markdown)
	}
	if !strings.Contains(msg.Markdown, "**2500 MKD**") {
		t.Errorf("missing total:\n%s", msg.Markdown)
	}
	if _, err := reminder.Compose("x@y.mk", "FK", nil); err != reminder.ErrNoItems {
		t.Errorf("Compose(nil) = %v", err)
	}
}
