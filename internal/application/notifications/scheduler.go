package notifications

import (
	"context"
	"fmt"
	"time"

	"foundersbook-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// SweepReport summarises one sweep run.
type SweepReport struct {
	Kind    domain.NotificationType
	Matched int
	Sent    int
	Failed  int
}

// RunSweep loads open tasks, sweeps them for kind at now and creates one
// notification per reminder, at most concurrency at a time. Individual
// failures are logged and skipped.
func (s *Service) RunSweep(ctx context.Context, kind domain.NotificationType, now time.Time, loc *time.Location, concurrency int) (SweepReport, error) {
	report := SweepReport{Kind: kind}
	if loc == nil {
		loc = time.UTC
	}
	_, end := DayBounds(now, loc)

	var tasks []domain.Task
	if err := s.DB.WithContext(ctx).
		Where("status <> ? AND deadline < ?", domain.TaskCompleted, end.UTC()).
		Find(&tasks).Error; err != nil {
		return report, err
	}
	reminders := OfKind(Sweep(now, loc, tasks), kind)
	report.Matched = len(reminders)

	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]error, len(reminders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, r := range reminders {
		i, r := i, r
		g.Go(func() error {
			if _, err := s.Create(gctx, r.UserID, r.Kind, r.Message()); err != nil {
				log.Error().Err(err).Str("user_id", r.UserID.String()).Str("kind", string(r.Kind)).Msg("Reminder failed")
				results[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range results {
		if err != nil {
			report.Failed++
		} else {
			report.Sent++
		}
	}
	return report, nil
}

// ParseClock parses a wall-clock time in HH:MM form.
func ParseClock(hhmm string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q, want HH:MM", hhmm)
	}
	return t.Hour(), t.Minute(), nil
}

// NextRun returns the first instant strictly after now at hour:minute in loc.
func NextRun(now time.Time, loc *time.Location, hour, minute int) time.Time {
	l := now.In(loc)
	next := time.Date(l.Year(), l.Month(), l.Day(), hour, minute, 0, 0, loc)
	if !next.After(l) {
		next = time.Date(l.Year(), l.Month(), l.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

// Job is one daily sweep.
type Job struct {
	Kind   domain.NotificationType
	Hour   int
	Minute int
}

// Scheduler fires the daily sweeps at fixed wall-clock times.
type Scheduler struct {
	Service     *Service
	Location    *time.Location
	Jobs        []Job
	Concurrency int
	Now         func() time.Time
}

// NewScheduler builds the due/overdue scheduler from HH:MM settings.
func NewScheduler(svc *Service, loc *time.Location, dueAt, overdueAt string, concurrency int) (*Scheduler, error) {
	dh, dm, err := ParseClock(dueAt)
	if err != nil {
		return nil, err
	}
	oh, om, err := ParseClock(overdueAt)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		Service:  svc,
		Location: loc,
		Jobs: []Job{
			{Kind: domain.NotificationTaskDue, Hour: dh, Minute: dm},
			{Kind: domain.NotificationTaskOverdue, Hour: oh, Minute: om},
		},
		Concurrency: concurrency,
	}, nil
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// next returns the jobs that fire soonest after now and when they fire.
func (s *Scheduler) next(now time.Time) ([]Job, time.Time) {
	var due []Job
	var at time.Time
	for _, j := range s.Jobs {
		t := NextRun(now, s.Location, j.Hour, j.Minute)
		switch {
		case len(due) == 0 || t.Before(at):
			due, at = []Job{j}, t
		case t.Equal(at):
			due = append(due, j)
		}
	}
	return due, at
}

// Run blocks until ctx is cancelled, running each job once a day.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.Jobs) == 0 {
		return fmt.Errorf("scheduler has no jobs")
	}
	for {
		jobs, at := s.next(s.now())
		log.Info().Int("jobs", len(jobs)).Time("at", at).Msg("Next reminder sweep scheduled")

		timer := time.NewTimer(time.Until(at))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		for _, job := range jobs {
			report, err := s.Service.RunSweep(ctx, job.Kind, s.now(), s.Location, s.Concurrency)
			if err != nil {
				log.Error().Err(err).Str("kind", string(job.Kind)).Msg("Reminder sweep failed")
				continue
			}
			log.Info().
				Str("kind", string(report.Kind)).
				Int("matched", report.Matched).
				Int("sent", report.Sent).
				Int("failed", report.Failed).
				Msg("Reminder sweep complete")
		}
	}
}
