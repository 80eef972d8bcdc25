package dashboard

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// badgeClasses maps every known status and priority label to its CSS badge
// class. Unknown labels fall back to badge-idle.
var badgeClasses = map[string]string{
	"idle":        "badge-idle",
	"active":      "badge-active",
	"blocked":     "badge-blocked",
	"offline":     "badge-offline",
	"todo":        "badge-todo",
	"in_progress": "badge-in_progress",
	"done":        "badge-done",
	"review":      "badge-review",
	"cancelled":   "badge-cancelled",
	"high":        "badge-high",
	"normal":      "badge-normal",
	"low":         "badge-low",
	"critical":    "badge-critical",
	"planning":    "badge-planning",
}

// BadgeClass returns the CSS badge class for a status or priority label.
// Total over all inputs.
func BadgeClass(label string) string {
	if c, ok := badgeClasses[label]; ok {
		return c
	}
	return "badge-idle"
}

var priorityColors = map[string]string{
	"critical": "#9f7aea",
	"high":     "#f56565",
	"normal":   "#4299e1",
	"low":      "#48bb78",
}

// PriorityColor returns the dot color for a priority label, neutral gray
// for anything unknown
func PriorityColor(priority string) string {
	if c, ok := priorityColors[priority]; ok {
		return c
	}
	return "#888"
}

// ElapsedSince formats the time elapsed since createdAt as "Dd Hh",
// "Hh Mm" or "Mm". A zero createdAt yields "N/A".
func ElapsedSince(createdAt time.Time) string {
	return ElapsedBetween(createdAt, time.Now())
}

// ElapsedBetween is ElapsedSince against an explicit reference time. The
// difference is calendar-aware: whole months are stripped before counting
// days, so the day figure matches what a calendar shows rather than raw
// duration division.
func ElapsedBetween(from, to time.Time) string {
	if from.IsZero() {
		return "N/A"
	}
	if to.Before(from) {
		return "0m"
	}

	cur := from
	for {
		next := cur.AddDate(0, 1, 0)
		if next.After(to) {
			break
		}
		cur = next
	}

	days := 0
	for {
		next := cur.AddDate(0, 0, 1)
		if next.After(to) {
			break
		}
		cur = next
		days++
	}

	rem := to.Sub(cur)
	hours := int(rem / time.Hour)
	mins := int(rem/time.Minute) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// Urgency classifies a due date relative to the current date. The value
// doubles as the CSS modifier class on due-date chips.
type Urgency string

const (
	UrgencyNone    Urgency = ""
	UrgencySoon    Urgency = "soon"
	UrgencyOverdue Urgency = "overdue"
)

// DueUrgency returns the urgency bucket for a YYYY-MM-DD due date.
// Empty or unparseable dates are never urgent.
func DueUrgency(dueDate string) Urgency {
	return dueUrgencyAt(dueDate, time.Now())
}

func dueUrgencyAt(dueDate string, now time.Time) Urgency {
	if dueDate == "" {
		return UrgencyNone
	}
	d, err := time.Parse("2006-01-02", dueDate)
	if err != nil {
		return UrgencyNone
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	due := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case due.Before(today):
		return UrgencyOverdue
	case !due.After(today.AddDate(0, 0, 2)):
		// Due today counts as soon; today is never overdue
		return UrgencySoon
	default:
		return UrgencyNone
	}
}

// Initials derives up to two uppercase letters from the first letter of
// each whitespace-separated name token. An empty name yields "?".
func Initials(fullName string) string {
	var b strings.Builder
	for _, token := range strings.Fields(fullName) {
		r, _ := utf8.DecodeRuneInString(token)
		b.WriteString(strings.ToUpper(string(r)))
		if utf8.RuneCountInString(b.String()) == 2 {
			break
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

// RelativeTime renders a timestamp as a human-relative phrase for the
// activity feed ("3 minutes ago"). Zero times render as a dash.
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}
