package payment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"clubify/internal/domain/civil"
)

// Status constants
const (
	StatusUnpaid  = "unpaid"
	StatusPartial = "partial"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusUnpaid, StatusPartial, StatusPaid, StatusOverdue}

// Billing calendar constants.
const (
	MinYear = 2024
	// MaxYear keeps due dates four digits wide so they order as strings.
	MaxYear = 9999
	DueDay  = 5
)

// Domain errors
var (
	ErrInvalidMonth    = errors.New("month must be between 1 and 12")
	ErrInvalidYear     = fmt.Errorf("year must be between %d and %d", MinYear, MaxYear)
	ErrEmptyPlayerID   = errors.New("player ID cannot be empty")
	ErrEmptyTeamID     = errors.New("team ID cannot be empty")
	ErrNegativeAmount  = errors.New("amounts cannot be negative")
	ErrNonPositivePaid = errors.New("payment amount must be greater than zero")
	ErrInvalidStatus   = errors.New("status must be one of: unpaid, partial, paid, overdue")
)

// Record is one player's bill for one calendar month.
// At most one Record exists per (PlayerID, PeriodMonth, PeriodYear).
type Record struct {
	ID              string
	PlayerID        string
	TeamID          string
	PeriodMonth     int
	PeriodYear      int
	AmountDue       int64
	AmountPaid      int64
	DiscountApplied int64
	Status          string // as stored; use EffectiveStatus for reads
	DueDate         string // YYYY-MM-DD
	PaidAt          time.Time
	Notes           string
	CreatedAt       time.Time
}

// ValidatePeriod checks a billing month/year pair.
// PRE: none
// POST: Returns nil if month is 1..12 and year is MinYear..MaxYear
func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	if year < MinYear || year > MaxYear {
		return ErrInvalidYear
	}
	return nil
}

// DueDate returns the due date for a billing period.
func DueDate(year, month int) string {
	return civil.OfMonth(year, month, DueDay)
}

// PeriodStart returns the first day of a billing period.
func PeriodStart(year, month int) string {
	return civil.OfMonth(year, month, 1)
}

// DeriveStatus computes the stored status from the amounts.
// INVARIANT: never returns overdue; overdue is a read-time projection
func DeriveStatus(amountPaid, amountDue int64) string {
	switch {
	case amountPaid >= amountDue:
		return StatusPaid
	case amountPaid > 0:
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// Validate checks if the Record has valid data.
// PRE: Record struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Record) Validate() error {
	if strings.TrimSpace(r.PlayerID) == "" {
		return ErrEmptyPlayerID
	}
	if strings.TrimSpace(r.TeamID) == "" {
		return ErrEmptyTeamID
	}
	if err := ValidatePeriod(r.PeriodMonth, r.PeriodYear); err != nil {
		return err
	}
	if r.AmountDue < 0 || r.AmountPaid < 0 || r.DiscountApplied < 0 {
		return ErrNegativeAmount
	}
	if !isValidStatus(r.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// EffectiveStatus returns the status as it should be reported on today.
// An unpaid record past its due date reads as overdue without being rewritten.
// PRE: today is YYYY-MM-DD
// INVARIANT: Record fields are not mutated
func (r *Record) EffectiveStatus(today string) string {
	if r.Status == StatusUnpaid && r.DueDate != "" && civil.Before(r.DueDate, today) {
		return StatusOverdue
	}
	return r.Status
}

// Outstanding returns what is still owed.
func (r *Record) Outstanding() int64 {
	if r.AmountPaid >= r.AmountDue {
		return 0
	}
	return r.AmountDue - r.AmountPaid
}

// ApplyPayment records money received against the bill.
// PRE: amount > 0
// POST: AmountPaid increased, Status re-derived, PaidAt set once fully paid
func (r *Record) ApplyPayment(amount int64, at time.Time) error {
	if amount <= 0 {
		return ErrNonPositivePaid
	}
	r.AmountPaid += amount
	r.Settle(at)
	return nil
}

// Settle re-derives Status from the amounts and stamps PaidAt the first time
// the record is fully paid.
func (r *Record) Settle(at time.Time) {
	r.Status = DeriveStatus(r.AmountPaid, r.AmountDue)
	if r.Status == StatusPaid && r.PaidAt.IsZero() {
		r.PaidAt = at
	}
}

func isValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}
