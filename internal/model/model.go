package model

import "time"

// Event is a single calendar event as returned by the provider, normalized
// into local types. For timed events Start/End carry the provider's
// timezone; for all-day events they hold the civil date at midnight and
// AllDay is set.
type Event struct {
	ID      string
	Summary string

	AllDay bool

	Start time.Time
	End   time.Time
}

// EventRecord is the compact per-event record kept after rendering a day
// view. Index resolution for removal operates on these, so the ID must be
// the provider's stable event identifier.
type EventRecord struct {
	ID        string
	TimeLabel string // e.g. "09:30 AM (60 min)" or "All Day"
	Title     string
}

// DayView is the result of fetching and rendering one day's events.
// Records are ordered ascending by start time; the 1-based display index of
// an event is its position in Records plus one.
type DayView struct {
	Date    time.Time
	Summary string
	Records []EventRecord
}

// Empty reports whether the day has no events.
func (v *DayView) Empty() bool { return len(v.Records) == 0 }

// EventRequest describes an event to be created on the provider.
type EventRequest struct {
	Title string
	Start time.Time
	End   time.Time
}

// CreatedEvent is the provider's answer to a successful insert.
type CreatedEvent struct {
	ID       string
	HTMLLink string
}
