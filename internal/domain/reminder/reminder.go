package reminder

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoItems is returned when there is nothing to remind about.
var ErrNoItems = errors.New("reminder has no outstanding items")

// Item is one outstanding bill listed in a reminder.
type Item struct {
	PlayerName  string
	TeamName    string
	PeriodMonth int
	PeriodYear  int
	Outstanding int64
	DueDate     string
}

// Message is a reminder ready to render and send.
type Message struct {
	To       string
	Subject  string
	Markdown string
}

// Compose builds the reminder for one parent. Items are listed oldest period first.
// PRE: items is non-empty
// POST: Markdown lists every item and the total outstanding, in denars
func Compose(to, clubName string, items []Item) (Message, error) {
	if len(items) == 0 {
		return Message{}, ErrNoItems
	}
	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PeriodYear != sorted[j].PeriodYear {
			return sorted[i].PeriodYear < sorted[j].PeriodYear
		}
		return sorted[i].PeriodMonth < sorted[j].PeriodMonth
	})

	var b strings.Builder
	var total int64
	fmt.Fprintf(&b, "Hello,\n\nOur records show the following membership fees for **%s** are overdue:\n\n", clubName)
	for _, it := range sorted {
		fmt.Fprintf(&b, "- %s (%s), %02d/%d: **%d MKD** (due %s)\n",
			it.PlayerName, it.TeamName, it.PeriodMonth, it.PeriodYear, it.Outstanding, it.DueDate)
		total += it.Outstanding
	}
	fmt.Fprintf(&b, "\nTotal outstanding: **%d MKD**.\n\nIf you have already paid, please ignore this message.\n", total)

	return Message{
		To:       to,
		Subject:  fmt.Sprintf("%s: overdue membership fees", clubName),
		Markdown: b.String(),
	}, nil
}
