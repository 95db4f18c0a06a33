package projections

import (
	"math"
	"time"
)

func nowOr(f func() time.Time) time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}

// percent returns part/whole*100 rounded to one decimal.
// PRE: whole > 0
func percent(part, whole int64) float64 {
	return math.Round(float64(part)/float64(whole)*1000) / 10
}
