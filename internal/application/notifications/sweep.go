package notifications

import (
	"fmt"
	"time"

	"foundersbook-backend/internal/domain"

	"github.com/google/uuid"
)

// Reminder is one pending task reminder for one user.
type Reminder struct {
	UserID    uuid.UUID
	Kind      domain.NotificationType
	TaskCount int
}

func (r Reminder) Message() string {
	if r.Kind == domain.NotificationTaskOverdue {
		if r.TaskCount == 1 {
			return "You have 1 overdue task."
		}
		return fmt.Sprintf("You have %d overdue tasks.", r.TaskCount)
	}
	if r.TaskCount == 1 {
		return "You have 1 task due today."
	}
	return fmt.Sprintf("You have %d tasks due today.", r.TaskCount)
}

// DayBounds returns the local calendar day containing now as [start, end).
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	l := now.In(loc)
	start := time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// Sweep finds users with tasks due during the local day of now and users
// with tasks whose deadline has passed. Completed tasks are ignored. Each
// user gets at most one reminder per kind; reminders keep the order in which
// their user was first seen.
func Sweep(now time.Time, loc *time.Location, tasks []domain.Task) []Reminder {
	if loc == nil {
		loc = time.UTC
	}
	start, end := DayBounds(now, loc)

	type key struct {
		user uuid.UUID
		kind domain.NotificationType
	}
	index := make(map[key]int)
	var out []Reminder
	add := func(user uuid.UUID, kind domain.NotificationType) {
		k := key{user, kind}
		if i, ok := index[k]; ok {
			out[i].TaskCount++
			return
		}
		index[k] = len(out)
		out = append(out, Reminder{UserID: user, Kind: kind, TaskCount: 1})
	}

	for _, t := range tasks {
		if t.Status == domain.TaskCompleted {
			continue
		}
		if !t.Deadline.Before(start) && t.Deadline.Before(end) {
			add(t.AssignedTo, domain.NotificationTaskDue)
		}
		if t.Deadline.Before(now) {
			add(t.AssignedTo, domain.NotificationTaskOverdue)
		}
	}
	return out
}

// OfKind keeps the reminders of one kind.
func OfKind(rs []Reminder, kind domain.NotificationType) []Reminder {
	out := make([]Reminder, 0, len(rs))
	for _, r := range rs {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
