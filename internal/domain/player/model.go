package player

import (
	"errors"
	"strings"
	"time"

	"clubify/internal/domain/civil"
)

// Position constants
const (
	PositionGoalkeeper = "goalkeeper"
	PositionDefender   = "defender"
	PositionMidfielder = "midfielder"
	PositionForward    = "forward"
)

// ValidPositions contains all valid position values. Empty is also accepted.
var ValidPositions = []string{PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionForward}

// MaxJerseyNumber is the highest shirt number accepted.
const MaxJerseyNumber = 99

// Domain errors
var (
	ErrEmptyClubID      = errors.New("club ID cannot be empty")
	ErrEmptyFirstName   = errors.New("first name cannot be empty")
	ErrEmptyLastName    = errors.New("last name cannot be empty")
	ErrInvalidBirthDate = errors.New("date of birth must be YYYY-MM-DD")
	ErrInvalidPosition  = errors.New("position must be one of: goalkeeper, defender, midfielder, forward")
	ErrInvalidJersey    = errors.New("jersey number must be between 0 and 99")
	ErrEmptyTeamID      = errors.New("team ID cannot be empty")
	ErrEmptyPlayerID    = errors.New("player ID cannot be empty")
	ErrAlreadyLeft      = errors.New("player has already left the team")
)

// Player is a registered youth player of a club.
type Player struct {
	ID           string
	ClubID       string
	FirstName    string
	LastName     string
	DateOfBirth  string // YYYY-MM-DD, optional
	Position     string
	JerseyNumber int
	CreatedAt    time.Time
}

// Validate checks if the Player has valid data.
// PRE: Player struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Player) Validate() error {
	if strings.TrimSpace(p.ClubID) == "" {
		return ErrEmptyClubID
	}
	if strings.TrimSpace(p.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if strings.TrimSpace(p.LastName) == "" {
		return ErrEmptyLastName
	}
	if p.DateOfBirth != "" && !civil.Valid(p.DateOfBirth) {
		return ErrInvalidBirthDate
	}
	if p.Position != "" && !isValidPosition(p.Position) {
		return ErrInvalidPosition
	}
	if p.JerseyNumber < 0 || p.JerseyNumber > MaxJerseyNumber {
		return ErrInvalidJersey
	}
	return nil
}

// FullName returns "First Last".
func (p *Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func isValidPosition(pos string) bool {
	for _, v := range ValidPositions {
		if v == pos {
			return true
		}
	}
	return false
}

// Assignment places a player on a team roster. LeftAt is zero while active.
type Assignment struct {
	ID       string
	TeamID   string
	PlayerID string
	JoinedAt time.Time
	LeftAt   time.Time
}

// Validate checks if the Assignment has valid data.
// PRE: Assignment struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Assignment) Validate() error {
	if strings.TrimSpace(a.TeamID) == "" {
		return ErrEmptyTeamID
	}
	if strings.TrimSpace(a.PlayerID) == "" {
		return ErrEmptyPlayerID
	}
	return nil
}

// IsActive reports whether the player is still on the team.
func (a *Assignment) IsActive() bool {
	return a.LeftAt.IsZero()
}

// Leave ends the assignment.
// PRE: assignment is active
// POST: LeftAt is set to at
func (a *Assignment) Leave(at time.Time) error {
	if !a.IsActive() {
		return ErrAlreadyLeft
	}
	a.LeftAt = at
	return nil
}

// ParentLink connects a parent account to a player for reminders and read access.
type ParentLink struct {
	PlayerID  string
	AccountID string
}
