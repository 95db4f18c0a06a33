package match

import (
	"errors"
	"strings"
	"time"

	"clubify/internal/domain/attendance"
	"clubify/internal/domain/civil"
)

// Status constants
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Result constants
const (
	ResultWin  = "win"
	ResultDraw = "draw"
	ResultLoss = "loss"
)

// Domain errors
var (
	ErrEmptyTeamID      = errors.New("team ID cannot be empty")
	ErrEmptyOpponent    = errors.New("opponent cannot be empty")
	ErrInvalidDate      = errors.New("match date must be YYYY-MM-DD")
	ErrInvalidKickoff   = errors.New("kickoff time must be HH:MM")
	ErrInvalidStatus    = errors.New("status must be one of: scheduled, completed, cancelled")
	ErrNegativeScore    = errors.New("goals cannot be negative")
	ErrNotCompleted     = errors.New("match has no result yet")
	ErrAlreadyCancelled = errors.New("cancelled matches cannot have a result")
)

// Match is a fixture played by one of the club's teams.
type Match struct {
	ID           string
	TeamID       string
	Opponent     string
	MatchDate    string // YYYY-MM-DD
	KickoffTime  string // HH:MM, optional
	Location     string
	IsHome       bool
	Competition  string
	Status       string
	GoalsFor     int
	GoalsAgainst int
	CreatedAt    time.Time
}

// Validate checks if the Match has valid data.
// PRE: Match struct is populated
// POST: Returns nil if valid, error otherwise; empty Status defaults to scheduled
func (m *Match) Validate() error {
	if strings.TrimSpace(m.TeamID) == "" {
		return ErrEmptyTeamID
	}
	if strings.TrimSpace(m.Opponent) == "" {
		return ErrEmptyOpponent
	}
	if !civil.Valid(m.MatchDate) {
		return ErrInvalidDate
	}
	if m.KickoffTime != "" {
		if _, err := time.Parse("15:04", m.KickoffTime); err != nil || len(m.KickoffTime) != 5 {
			return ErrInvalidKickoff
		}
	}
	if m.Status == "" {
		m.Status = StatusScheduled
	}
	switch m.Status {
	case StatusScheduled, StatusCompleted, StatusCancelled:
	default:
		return ErrInvalidStatus
	}
	if m.GoalsFor < 0 || m.GoalsAgainst < 0 {
		return ErrNegativeScore
	}
	return nil
}

// RecordResult sets the final score and completes the match.
// PRE: goals are non-negative; match is not cancelled
// POST: Status is completed
func (m *Match) RecordResult(goalsFor, goalsAgainst int) error {
	if m.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if goalsFor < 0 || goalsAgainst < 0 {
		return ErrNegativeScore
	}
	m.GoalsFor = goalsFor
	m.GoalsAgainst = goalsAgainst
	m.Status = StatusCompleted
	return nil
}

// Result returns win, draw or loss for a completed match.
func (m *Match) Result() (string, error) {
	if m.Status != StatusCompleted {
		return "", ErrNotCompleted
	}
	switch {
	case m.GoalsFor > m.GoalsAgainst:
		return ResultWin, nil
	case m.GoalsFor < m.GoalsAgainst:
		return ResultLoss, nil
	default:
		return ResultDraw, nil
	}
}

// Stats is a team's record over completed matches.
type Stats struct {
	Played         int     `json:"played"`
	Wins           int     `json:"wins"`
	Draws          int     `json:"draws"`
	Losses         int     `json:"losses"`
	GoalsFor       int     `json:"goalsFor"`
	GoalsAgainst   int     `json:"goalsAgainst"`
	GoalDifference int     `json:"goalDifference"`
	WinPercentage  float64 `json:"winPercentage"`
}

// Summarize tallies completed matches; scheduled and cancelled ones are ignored.
func Summarize(matches []Match) Stats {
	var s Stats
	for i := range matches {
		res, err := matches[i].Result()
		if err != nil {
			continue
		}
		s.Played++
		s.GoalsFor += matches[i].GoalsFor
		s.GoalsAgainst += matches[i].GoalsAgainst
		switch res {
		case ResultWin:
			s.Wins++
		case ResultDraw:
			s.Draws++
		case ResultLoss:
			s.Losses++
		}
	}
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst
	s.WinPercentage = attendance.Percentage(s.Wins, s.Played)
	return s
}
