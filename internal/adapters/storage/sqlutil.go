package storage

import (
	"strings"
	"time"
)

// TimeLayout is how timestamps are stored in TEXT columns.
const TimeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// FormatTime renders t for storage; the zero time is stored as "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a stored timestamp; "" and malformed values yield the zero time.
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Placeholders returns "?, ?, ?" for n arguments.
// PRE: n > 0
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// StringArgs converts ids to a []any for variadic query args.
func StringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// BoolToInt stores booleans as 0/1 so one schema serves both dialects.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// DialectOf reports the dialect statements on db are rebound to. Plain
// *sql.DB handles are treated as SQLite.
func DialectOf(db SQLDB) Dialect {
	if t, ok := db.(*TimedDB); ok {
		return t.Dialect()
	}
	return DialectSQLite
}
