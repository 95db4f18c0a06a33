package attendance

import (
	"errors"
	"math"
	"sort"
	"time"
)

// Status constants
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// Domain errors
var (
	ErrEmptySessionID = errors.New("attendance must be associated with a training session")
	ErrEmptyPlayerID  = errors.New("attendance must be associated with a player")
	ErrInvalidStatus  = errors.New("status must be one of: present, absent, late, excused")
)

// Attendance is one player's mark for one training session.
// At most one exists per (SessionID, PlayerID); re-marking overwrites.
type Attendance struct {
	ID         string
	SessionID  string
	PlayerID   string
	Status     string
	Notes      string
	RecordedBy string
	RecordedAt time.Time
}

// Validate checks if the Attendance has valid data.
// PRE: Attendance struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: SessionID and PlayerID must not be empty
func (a *Attendance) Validate() error {
	if a.SessionID == "" {
		return ErrEmptySessionID
	}
	if a.PlayerID == "" {
		return ErrEmptyPlayerID
	}
	switch a.Status {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return nil
	}
	return ErrInvalidStatus
}

// Attended reports whether the player took part (present or late).
func (a *Attendance) Attended() bool {
	return a.Status == StatusPresent || a.Status == StatusLate
}

// PlayerStats is the attendance tally for one player.
type PlayerStats struct {
	PlayerID   string  `json:"playerId"`
	Present    int     `json:"present"`
	Late       int     `json:"late"`
	Absent     int     `json:"absent"`
	Excused    int     `json:"excused"`
	Recorded   int     `json:"recorded"`
	Percentage float64 `json:"percentage"`
}

// Summary is the attendance tally for a set of sessions.
type Summary struct {
	Sessions   int           `json:"sessions"`
	Recorded   int           `json:"recorded"`
	Attended   int           `json:"attended"`
	Percentage float64       `json:"percentage"`
	Players    []PlayerStats `json:"players"`
}

// Percentage returns part/whole*100 rounded to one decimal, 0 when whole is 0.
func Percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}

// Summarize tallies marks across sessions.
// PRE: records belong to the sessions counted in sessionCount
// POST: Players sorted by PlayerID; percentages are (present+late)/recorded
// INVARIANT: no I/O
func Summarize(sessionCount int, records []Attendance) Summary {
	byPlayer := make(map[string]*PlayerStats)
	sum := Summary{Sessions: sessionCount}
	for _, r := range records {
		ps, ok := byPlayer[r.PlayerID]
		if !ok {
			ps = &PlayerStats{PlayerID: r.PlayerID}
			byPlayer[r.PlayerID] = ps
		}
		switch r.Status {
		case StatusPresent:
			ps.Present++
		case StatusLate:
			ps.Late++
		case StatusAbsent:
			ps.Absent++
		case StatusExcused:
			ps.Excused++
		default:
			continue
		}
		ps.Recorded++
		sum.Recorded++
		if r.Attended() {
			sum.Attended++
		}
	}
	sum.Percentage = Percentage(sum.Attended, sum.Recorded)
	sum.Players = make([]PlayerStats, 0, len(byPlayer))
	for _, ps := range byPlayer {
		ps.Percentage = Percentage(ps.Present+ps.Late, ps.Recorded)
		sum.Players = append(sum.Players, *ps)
	}
	sort.Slice(sum.Players, func(i, j int) bool {
		return sum.Players[i].PlayerID < sum.Players[j].PlayerID
	})
	return sum
}
