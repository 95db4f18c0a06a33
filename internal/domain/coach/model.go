package coach

import (
	"errors"
	"strings"
	"time"
)

// Coaching role constants
const (
	RoleHead      = "head"
	RoleAssistant = "assistant"
)

// Domain errors
var (
	ErrEmptyTeamID    = errors.New("team ID cannot be empty")
	ErrEmptyAccountID = errors.New("account ID cannot be empty")
	ErrInvalidRole    = errors.New("coaching role must be head or assistant")
)

// Assignment puts a coach account in charge of a team.
type Assignment struct {
	ID         string
	TeamID     string
	AccountID  string
	Role       string // head, assistant
	AssignedAt time.Time
}

// Validate checks if the Assignment has valid data.
// PRE: Assignment struct is populated
// POST: Returns nil if valid, error otherwise; empty Role defaults to assistant
func (a *Assignment) Validate() error {
	if strings.TrimSpace(a.TeamID) == "" {
		return ErrEmptyTeamID
	}
	if strings.TrimSpace(a.AccountID) == "" {
		return ErrEmptyAccountID
	}
	if a.Role == "" {
		a.Role = RoleAssistant
	}
	if a.Role != RoleHead && a.Role != RoleAssistant {
		return ErrInvalidRole
	}
	return nil
}
