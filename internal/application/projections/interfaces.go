package projections

import (
	"context"

	"clubify/internal/adapters/storage/payment"
	playerStore "clubify/internal/adapters/storage/player"
	"clubify/internal/adapters/storage/training"
	domainAttendance "clubify/internal/domain/attendance"
	domainMatch "clubify/internal/domain/match"
	domainPayment "clubify/internal/domain/payment"
	domainPlayer "clubify/internal/domain/player"
	domainTeam "clubify/internal/domain/team"
	domainTraining "clubify/internal/domain/training"
)

// PaymentStore interface for payment record queries.
type PaymentStore interface {
	List(ctx context.Context, filter payment.ListFilter) ([]domainPayment.Record, error)
	Count(ctx context.Context, filter payment.ListFilter) (int, error)
}

// PlayerStore interface for player queries.
type PlayerStore interface {
	List(ctx context.Context, filter playerStore.ListFilter) ([]domainPlayer.Player, error)
	Count(ctx context.Context, filter playerStore.ListFilter) (int, error)
	ListByIDs(ctx context.Context, ids []string) ([]domainPlayer.Player, error)
}

// TeamStore interface for team queries.
type TeamStore interface {
	ListByClub(ctx context.Context, clubID string) ([]domainTeam.Team, error)
	ListByIDs(ctx context.Context, ids []string) ([]domainTeam.Team, error)
}

// RosterStore interface for roster queries.
type RosterStore interface {
	ListActiveByTeams(ctx context.Context, teamIDs []string) ([]domainPlayer.Assignment, error)
}

// SessionStore interface for training session queries.
type SessionStore interface {
	ListSessions(ctx context.Context, filter training.SessionFilter) ([]domainTraining.Session, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	ListBySessions(ctx context.Context, sessionIDs []string) ([]domainAttendance.Attendance, error)
}

// MatchStore interface for match queries.
type MatchStore interface {
	ListByTeams(ctx context.Context, teamIDs []string, from, to string) ([]domainMatch.Match, error)
}
