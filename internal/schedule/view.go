package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	appLog "github.com/dalbodeule/calbot/internal/log"
	"github.com/dalbodeule/calbot/internal/model"
)

const (
	// HeaderLayout renders dates the way the day view header does.
	HeaderLayout = "Monday, January 02, 2006"

	timeLabelLayout = "03:04 PM"

	placeholderTitle = "No Title"
)

// AllDayLabel is the time label used for events without a timed start.
const AllDayLabel = "All Day"

// FetchDay lists the provider's events inside the given calendar day and
// renders them into a DayView. The window spans local midnight through the
// last instant of the day; recurring events arrive pre-expanded and ordered
// ascending by start time. Display indices are dense, 1-based and assigned
// purely by position.
func (s *Service) FetchDay(ctx context.Context, date time.Time) (*model.DayView, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}

	start := Midnight(date.In(s.loc))
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)

	events, err := s.provider.ListDay(ctx, start, end)
	if err != nil {
		appLog.Error("listing events failed", err, "date", start.Format("2006-01-02"))
		return nil, err
	}

	view := &model.DayView{Date: start}
	if len(events) == 0 {
		view.Summary = fmt.Sprintf("No events found for %s.", start.Format(HeaderLayout))
		return view, nil
	}

	lines := make([]string, 0, len(events)+1)
	lines = append(lines, fmt.Sprintf("**Schedule for %s:**", start.Format(HeaderLayout)))

	for i, ev := range events {
		label := s.timeLabel(ev)
		title := ev.Summary
		if title == "" {
			title = placeholderTitle
		}
		lines = append(lines, fmt.Sprintf("[%d] %s: %s", i+1, label, title))
		view.Records = append(view.Records, model.EventRecord{
			ID:        ev.ID,
			TimeLabel: label,
			Title:     title,
		})
	}

	view.Summary = strings.Join(lines, "\n")
	appLog.Info("fetched day view", "date", start.Format("2006-01-02"), "events", len(view.Records))
	return view, nil
}

// timeLabel renders an event's start as a 12-hour clock label with the
// duration in whole minutes appended, or "All Day" for date-only events.
// Non-positive durations are omitted.
func (s *Service) timeLabel(ev model.Event) string {
	if ev.AllDay {
		return AllDayLabel
	}
	label := ev.Start.In(s.loc).Format(timeLabelLayout)
	if !ev.End.IsZero() {
		if mins := int(ev.End.Sub(ev.Start).Minutes()); mins > 0 {
			label += fmt.Sprintf(" (%d min)", mins)
		}
	}
	return label
}
