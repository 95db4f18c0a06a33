package payment_test

import (
	"context"
	"testing"
	"time"

	"clubify/internal/domain/payment"
)

func TestValidatePeriod(t *testing.T) {
	tests := []struct {
		name        string
		month, year int
		wantErr     error
	}{
		{"january 2024", 1, 2024, nil},
		{"december 2030", 12, 2030, nil},
		{"month zero", 0, 2025, payment.ErrInvalidMonth},
		{"month thirteen", 13, 2025, payment.ErrInvalidMonth},
		{"year too early", 6, 2023, payment.ErrInvalidYear},
		{"last four-digit year", 12, 9999, nil},
		{"five-digit year", 3, 10000, payment.ErrInvalidYear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := payment.ValidatePeriod(tt.month, tt.year); err != tt.wantErr {
				t.Errorf("ValidatePeriod(%d, %d) = %v, want %v", tt.month, tt.year, err, tt.wantErr)
			}
		})
	}
}

func TestDueDate(t *testing.T) {
	if got := payment.DueDate(2025, 3); got != "2025-03-05" {
		t.Errorf("DueDate() = %q, want 2025-03-05", got)
	}
	if got := payment.PeriodStart(2025, 11); got != "2025-11-01" {
		t.Errorf("PeriodStart() = %q, want 2025-11-01", got)
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		paid, due int64
		want      string
	}{
		{0, 3000, payment.StatusUnpaid},
		{1000, 3000, payment.StatusPartial},
		{3000, 3000, payment.StatusPaid},
		{3500, 3000, payment.StatusPaid},
		{0, 0, payment.StatusPaid},
	}
	for _, tt := range tests {
		if got := payment.DeriveStatus(tt.paid, tt.due); got != tt.want {
			t.Errorf("DeriveStatus(%d, %d) = %q, want %q", tt.paid, tt.due, got, tt.want)
		}
	}
}

// TestRecord_EffectiveStatus covers overdue derivation at read time.
func TestRecord_EffectiveStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		due    string
		today  string
		want   string
	}{
		{"unpaid past due reads overdue", payment.StatusUnpaid, "2025-03-05", "2025-03-06", payment.StatusOverdue},
		{"unpaid on due date stays unpaid", payment.StatusUnpaid, "2025-03-05", "2025-03-05", payment.StatusUnpaid},
		{"unpaid before due", payment.StatusUnpaid, "2025-03-05", "2025-03-01", payment.StatusUnpaid},
		{"partial past due stays partial", payment.StatusPartial, "2025-03-05", "2025-04-01", payment.StatusPartial},
		{"paid past due stays paid", payment.StatusPaid, "2025-03-05", "2025-04-01", payment.StatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := payment.Record{Status: tt.status, DueDate: tt.due}
			if got := r.EffectiveStatus(tt.today); got != tt.want {
				t.Errorf("EffectiveStatus() = %q, want %q", got, tt.want)
			}
			if r.Status != tt.status {
				t.Error("EffectiveStatus must not mutate the record")
			}
		})
	}
}

func TestRecord_ApplyPayment(t *testing.T) {
	r := payment.Record{AmountDue: 3000, Status: payment.StatusUnpaid}
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	if err := r.ApplyPayment(0, at); err != payment.ErrNonPositivePaid {
		t.Fatalf("ApplyPayment(0) = %v, want ErrNonPositivePaid", err)
	}
	if err := r.ApplyPayment(1000, at); err != nil {
		t.Fatalf("ApplyPayment() error = %v", err)
	}
	if r.Status != payment.StatusPartial || !r.PaidAt.IsZero() {
		t.Errorf("after partial: status=%q paidAt=%v", r.Status, r.PaidAt)
	}
	if got := r.Outstanding(); got != 2000 {
		t.Errorf("Outstanding() = %d, want 2000", got)
	}
	if err := r.ApplyPayment(2000, at); err != nil {
		t.Fatalf("ApplyPayment() error = %v", err)
	}
	if r.Status != payment.StatusPaid || !r.PaidAt.Equal(at) {
		t.Errorf("after full: status=%q paidAt=%v", r.Status, r.PaidAt)
	}
}

func TestRecord_Validate(t *testing.T) {
	r := payment.Record{PlayerID: "p1", TeamID: "t1", PeriodMonth: 3, PeriodYear: 2025, AmountDue: 3000, Status: payment.StatusUnpaid}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	r.Status = "cancelled"
	if err := r.Validate(); err != payment.ErrInvalidStatus {
		t.Errorf("Validate() = %v, want ErrInvalidStatus", err)
	}
}

func TestAmountDue(t *testing.T) {
	got, err := payment.AmountDue(3000, 500)
	if err != nil || got != 2500 {
		t.Errorf("AmountDue(3000, 500) = %d, %v", got, err)
	}
	if got, err := payment.AmountDue(3000, 3500); err != nil || got != 0 {
		t.Errorf("AmountDue(3000, 3500) = %d, %v, want 0", got, err)
	}
	if _, err := payment.AmountDue(3000, -1); err != payment.ErrNegativeAmount {
		t.Errorf("AmountDue negative = %v", err)
	}
	d, _ := payment.NoDiscount{}.Discount(context.Background(), payment.Candidate{FeeAmount: 3000})
	if d != 0 {
		t.Errorf("NoDiscount = %d, want 0", d)
	}
}
