package web

import (
	"time"

	"clubify/internal/domain/access"
	"clubify/internal/domain/account"
	"clubify/internal/domain/civil"
	"clubify/internal/domain/club"
	"clubify/internal/domain/coach"
	"clubify/internal/domain/fee"
	"clubify/internal/domain/match"
	"clubify/internal/domain/payment"
	"clubify/internal/domain/player"
	"clubify/internal/domain/team"
	"clubify/internal/domain/training"
)

// Response shapes. Domain types carry no JSON tags, so each is mapped here.

type grantDTO struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Role      string    `json:"role"`
	ClubID    *string   `json:"clubId"`
	CreatedAt time.Time `json:"createdAt"`
}

func toGrantDTO(g access.Grant) grantDTO {
	d := grantDTO{ID: g.ID, AccountID: g.AccountID, Role: string(g.Role), CreatedAt: g.CreatedAt}
	if g.ClubID != "" {
		clubID := g.ClubID
		d.ClubID = &clubID
	}
	return d
}

func toGrantDTOs(grants []access.Grant) []grantDTO {
	out := make([]grantDTO, 0, len(grants))
	for _, g := range grants {
		out = append(out, toGrantDTO(g))
	}
	return out
}

type accountDTO struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

func toAccountDTO(a account.Account) accountDTO {
	return accountDTO{ID: a.ID, Email: a.Email, FullName: a.FullName}
}

type clubDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func toClubDTO(c club.Club) clubDTO {
	return clubDTO{ID: c.ID, Name: c.Name, City: c.City, Active: c.Active, CreatedAt: c.CreatedAt}
}

type teamDTO struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"clubId"`
	Name      string    `json:"name"`
	AgeGroup  string    `json:"ageGroup"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func toTeamDTO(t team.Team) teamDTO {
	return teamDTO{ID: t.ID, ClubID: t.ClubID, Name: t.Name, AgeGroup: t.AgeGroup, Active: t.Active, CreatedAt: t.CreatedAt}
}

type playerDTO struct {
	ID           string `json:"id"`
	ClubID       string `json:"clubId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	Position     string `json:"position,omitempty"`
	JerseyNumber int    `json:"jerseyNumber,omitempty"`
}

func toPlayerDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:           p.ID,
		ClubID:       p.ClubID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		DateOfBirth:  p.DateOfBirth,
		Position:     p.Position,
		JerseyNumber: p.JerseyNumber,
	}
}

type assignmentDTO struct {
	ID       string  `json:"id"`
	TeamID   string  `json:"teamId"`
	PlayerID string  `json:"playerId"`
	JoinedAt string  `json:"joinedAt"`
	LeftAt   *string `json:"leftAt"`
}

func toAssignmentDTO(a player.Assignment) assignmentDTO {
	d := assignmentDTO{ID: a.ID, TeamID: a.TeamID, PlayerID: a.PlayerID, JoinedAt: civil.Format(a.JoinedAt)}
	if !a.LeftAt.IsZero() {
		left := civil.Format(a.LeftAt)
		d.LeftAt = &left
	}
	return d
}

type coachDTO struct {
	ID         string    `json:"id"`
	TeamID     string    `json:"teamId"`
	AccountID  string    `json:"accountId"`
	Email      string    `json:"email,omitempty"`
	FullName   string    `json:"fullName,omitempty"`
	Role       string    `json:"role"`
	AssignedAt time.Time `json:"assignedAt"`
}

func toCoachDTO(a coach.Assignment) coachDTO {
	return coachDTO{ID: a.ID, TeamID: a.TeamID, AccountID: a.AccountID, Role: a.Role, AssignedAt: a.AssignedAt}
}

type feeDTO struct {
	ID            string    `json:"id"`
	TeamID        string    `json:"teamId"`
	Amount        int64     `json:"amount"`
	EffectiveFrom string    `json:"effectiveFrom"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toFeeDTO(f fee.SubscriptionFee) feeDTO {
	return feeDTO{ID: f.ID, TeamID: f.TeamID, Amount: f.Amount, EffectiveFrom: f.EffectiveFrom, CreatedAt: f.CreatedAt}
}

type paymentDTO struct {
	ID              string     `json:"id"`
	PlayerID        string     `json:"playerId"`
	TeamID          string     `json:"teamId"`
	Month           int        `json:"month"`
	Year            int        `json:"year"`
	AmountDue       int64      `json:"amountDue"`
	AmountPaid      int64      `json:"amountPaid"`
	DiscountApplied int64      `json:"discountApplied"`
	Outstanding     int64      `json:"outstanding"`
	Status          string     `json:"status"`
	DueDate         string     `json:"dueDate"`
	PaidAt          *time.Time `json:"paidAt"`
	Notes           string     `json:"notes,omitempty"`
}

// toPaymentDTO reports the status as of today, not as stored.
func toPaymentDTO(rec payment.Record, today string) paymentDTO {
	d := paymentDTO{
		ID:              rec.ID,
		PlayerID:        rec.PlayerID,
		TeamID:          rec.TeamID,
		Month:           rec.PeriodMonth,
		Year:            rec.PeriodYear,
		AmountDue:       rec.AmountDue,
		AmountPaid:      rec.AmountPaid,
		DiscountApplied: rec.DiscountApplied,
		Outstanding:     rec.Outstanding(),
		Status:          rec.EffectiveStatus(today),
		DueDate:         rec.DueDate,
		Notes:           rec.Notes,
	}
	if !rec.PaidAt.IsZero() {
		paidAt := rec.PaidAt
		d.PaidAt = &paidAt
	}
	return d
}

type sessionDTO struct {
	ID              string `json:"id"`
	TeamID          string `json:"teamId"`
	SessionDate     string `json:"sessionDate"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Location        string `json:"location,omitempty"`
	Notes           string `json:"notes,omitempty"`
	RecurrenceID    string `json:"recurrenceId,omitempty"`
}

func toSessionDTO(s training.Session) sessionDTO {
	return sessionDTO{
		ID:              s.ID,
		TeamID:          s.TeamID,
		SessionDate:     s.SessionDate,
		StartTime:       s.StartTime,
		DurationMinutes: s.DurationMinutes,
		Location:        s.Location,
		Notes:           s.Notes,
		RecurrenceID:    s.RecurrenceID,
	}
}

type matchDTO struct {
	ID           string `json:"id"`
	TeamID       string `json:"teamId"`
	Opponent     string `json:"opponent"`
	MatchDate    string `json:"matchDate"`
	KickoffTime  string `json:"kickoffTime,omitempty"`
	Location     string `json:"location,omitempty"`
	IsHome       bool   `json:"isHome"`
	Competition  string `json:"competition,omitempty"`
	Status       string `json:"status"`
	GoalsFor     *int   `json:"goalsFor"`
	GoalsAgainst *int   `json:"goalsAgainst"`
}

func toMatchDTO(m match.Match) matchDTO {
	d := matchDTO{
		ID:          m.ID,
		TeamID:      m.TeamID,
		Opponent:    m.Opponent,
		MatchDate:   m.MatchDate,
		KickoffTime: m.KickoffTime,
		Location:    m.Location,
		IsHome:      m.IsHome,
		Competition: m.Competition,
		Status:      m.Status,
	}
	if m.Status == match.StatusCompleted {
		gf, ga := m.GoalsFor, m.GoalsAgainst
		d.GoalsFor, d.GoalsAgainst = &gf, &ga
	}
	return d
}
