package club

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 120
	MaxCityLength = 80
)

// Domain errors
var (
	ErrEmptyName   = errors.New("club name cannot be empty")
	ErrNameTooLong = errors.New("club name cannot exceed 120 characters")
	ErrCityTooLong = errors.New("city cannot exceed 80 characters")
)

// Club is a tenant: every team, player and grant belongs to exactly one club.
type Club struct {
	ID        string
	Name      string
	City      string
	Active    bool
	CreatedAt time.Time
}

// Validate checks if the Club has valid data.
// PRE: Club struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Club) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(c.City) > MaxCityLength {
		return ErrCityTooLong
	}
	return nil
}
