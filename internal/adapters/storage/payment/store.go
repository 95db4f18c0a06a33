package payment

import (
	"context"
	"time"

	domain "clubify/internal/domain/payment"
)

// Store persists monthly payment records.
type Store interface {
	// InsertIgnoreDuplicates writes records, skipping any whose
	// (player, month, year) already exists. Returns how many were written.
	InsertIgnoreDuplicates(ctx context.Context, records []domain.Record) (int, error)
	GetByID(ctx context.Context, id string) (domain.Record, error)
	// AddPayment atomically adds amount to the paid total and returns the
	// settled record. A non-empty notes replaces the stored notes.
	AddPayment(ctx context.Context, id string, amount int64, notes string, at time.Time) (domain.Record, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Record, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter narrows List and Count. Zero values mean "any".
type ListFilter struct {
	ClubID       string // via the record's team
	TeamID       string
	PlayerIDs    []string
	Month        int
	Year         int
	Statuses     []string // stored statuses
	DueBefore    string   // due_date < DueBefore
	DueOnOrAfter string   // due_date >= DueOnOrAfter
	Limit        int      // 0 means no limit
	Offset       int
}

// Ensure SQLStore implements Store interface.
var _ Store = (*SQLStore)(nil)
