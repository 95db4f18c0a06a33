package audit_test

import (
	"testing"
	"time"

	"clubify/internal/domain/audit"
)

func TestNewEvent_Builders(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	e := audit.NewEvent("acc-1", "admin@club.mk", audit.CategoryBilling, audit.ActionGenerate, now).
		InClub("club-1").
		WithResource("payment_period", "2025-03").
		WithDescription("generated 12 records")

	if e.ID == "" {
		t.Error("expected generated ID")
	}
	if !e.Timestamp.Equal(now) || e.ClubID != "club-1" || e.ResourceID != "2025-03" {
		t.Errorf("event = %+v", e)
	}
	other := audit.NewEvent("acc-1", "", audit.CategoryBilling, audit.ActionGenerate, now)
	if other.ID == e.ID {
		t.Error("IDs must be unique")
	}
}
