package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	appLog "github.com/dalbodeule/calbot/internal/log"
	"github.com/dalbodeule/calbot/internal/model"
	"github.com/dalbodeule/calbot/internal/schedule"
)

const shortDateLayout = "Monday, January 02"

// Notifier is the delivery sink for the daily summary. It accepts
// arbitrarily long text; transport framing (chunking) is its concern.
type Notifier interface {
	Deliver(ctx context.Context, text string) error
}

// Scheduler fires once per day at a configured local wall-clock time,
// fetches today's schedule and forwards it to the notifier. Delivery is
// fire-and-forget: a failed cycle waits for the next one.
type Scheduler struct {
	svc      *schedule.Service
	notifier Notifier
	cron     *cron.Cron
	loc      *time.Location

	now func() time.Time
}

// New builds a Scheduler firing daily at "HH:MM" local time.
func New(svc *schedule.Service, notifier Notifier, at string, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}

	spec, err := CronSpec(at)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		svc:      svc,
		notifier: notifier,
		cron:     cron.New(cron.WithLocation(loc)),
		loc:      loc,
		now:      time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.fireOnce); err != nil {
		return nil, fmt.Errorf("summary: schedule %q: %w", spec, err)
	}

	appLog.Info("daily summary scheduled", "at", at, "tz", loc.String())
	return s, nil
}

// CronSpec converts a "HH:MM" wall-clock time into a daily cron spec.
func CronSpec(at string) (string, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return "", fmt.Errorf("summary: bad daily_summary_time %q: %w", at, err)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}

// Start begins the cron loop in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the loop and waits for a running fire to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) fireOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	s.Fire(ctx)
}

// Fire fetches today's schedule and delivers the summary. On fetch failure
// or an empty day a friendly degraded message is sent instead of the raw
// rendering. Exported so the -once flag can trigger a single cycle.
func (s *Scheduler) Fire(ctx context.Context) {
	today := schedule.Midnight(s.now().In(s.loc))

	view, err := s.svc.FetchDay(ctx, today)
	msg := s.message(today, view, err)

	if err := s.notifier.Deliver(ctx, msg); err != nil {
		appLog.Error("daily summary delivery failed", err, "date", today.Format("2006-01-02"))
		return
	}
	appLog.Info("daily summary delivered", "date", today.Format("2006-01-02"))
}

func (s *Scheduler) message(today time.Time, view *model.DayView, err error) string {
	switch {
	case err != nil:
		appLog.Error("daily summary fetch failed", err, "date", today.Format("2006-01-02"))
		return "⚠️ Could not fetch today's schedule summary."
	case view.Empty():
		return fmt.Sprintf("☀️ Good morning! No events scheduled for today (%s).", today.Format(shortDateLayout))
	default:
		header := fmt.Sprintf("**Schedule for %s:**", today.Format(schedule.HeaderLayout))
		retitled := fmt.Sprintf("🗓️ **Schedule for Today (%s):**", today.Format(shortDateLayout))
		return strings.Replace(view.Summary, header, retitled, 1)
	}
}
