package team

import (
	"errors"
	"strings"
	"time"
)

// MaxNameLength bounds the team name.
const MaxNameLength = 100

// Domain errors
var (
	ErrEmptyClubID   = errors.New("club ID cannot be empty")
	ErrEmptyName     = errors.New("team name cannot be empty")
	ErrNameTooLong   = errors.New("team name cannot exceed 100 characters")
	ErrEmptyAgeGroup = errors.New("age group cannot be empty")
)

// Team belongs to exactly one club and anchors rosters, fees and training.
type Team struct {
	ID        string
	ClubID    string
	Name      string
	AgeGroup  string // e.g. U10, U12, seniors
	Active    bool
	CreatedAt time.Time
}

// Validate checks if the Team has valid data.
// PRE: Team struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Team) Validate() error {
	if strings.TrimSpace(t.ClubID) == "" {
		return ErrEmptyClubID
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(t.AgeGroup) == "" {
		return ErrEmptyAgeGroup
	}
	return nil
}

// NamesByID indexes team names by id.
func NamesByID(teams []Team) map[string]string {
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	return names
}

// IDs returns the ids of teams in order.
func IDs(teams []Team) []string {
	ids := make([]string, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids
}
