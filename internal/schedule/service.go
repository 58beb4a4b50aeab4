package schedule

import (
	"context"
	"time"

	appLog "github.com/dalbodeule/calbot/internal/log"
	"github.com/dalbodeule/calbot/internal/model"
)

// DefaultDurationMinutes is used when an add request carries no duration.
const DefaultDurationMinutes = 60

// Provider is the calendar capability set the engine depends on. The
// concrete implementation (internal/gcal) owns authentication and token
// refresh; here a failing provider is a single undifferentiated error.
type Provider interface {
	// ListDay returns all events with a start inside [start, end], recurring
	// events expanded to single instances, ordered ascending by start time.
	ListDay(ctx context.Context, start, end time.Time) ([]model.Event, error)
	// Insert creates an event on the managed calendar.
	Insert(ctx context.Context, req model.EventRequest) (*model.CreatedEvent, error)
	// Delete removes an event by provider ID. A provider "not found / gone"
	// response surfaces as ErrEventNotFound.
	Delete(ctx context.Context, eventID string) error
}

// Service is the schedule resolution engine: it resolves day expressions,
// fetches and renders day views, tracks per-requester view snapshots, and
// orchestrates add/remove mutations against the provider.
type Service struct {
	provider Provider
	cache    *ViewCache
	loc      *time.Location

	now func() time.Time // injectable clock for tests
}

// NewService constructs a Service. provider may be nil, in which case every
// operation reports ErrProviderUnavailable. loc nil means the local zone.
func NewService(provider Provider, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		provider: provider,
		cache:    NewViewCache(),
		loc:      loc,
		now:      time.Now,
	}
}

// Location returns the zone all day-boundary math runs in.
func (s *Service) Location() *time.Location { return s.loc }

// Today returns the current calendar date at midnight in the service zone.
func (s *Service) Today() time.Time {
	return Midnight(s.now().In(s.loc))
}

// View resolves dayExpr, fetches that day's events and stores the resulting
// records as the requester's current snapshot. The snapshot is only
// replaced on success; a failed fetch leaves prior indices valid.
func (s *Service) View(ctx context.Context, requesterID, dayExpr string) (*model.DayView, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}

	date, err := ResolveDate(dayExpr, s.Today())
	if err != nil {
		return nil, err
	}

	view, err := s.FetchDay(ctx, date)
	if err != nil {
		return nil, err
	}

	s.cache.Put(requesterID, view.Records)
	return view, nil
}

// Add parses startExpr, attaches the local zone, and creates an event of
// durationMin minutes (DefaultDurationMinutes when <= 0 is not enforced
// here: zero picks the default, anything else falls through to the provider
// as-is). An unparseable expression never reaches the provider.
func (s *Service) Add(ctx context.Context, title, startExpr string, durationMin int) (time.Time, *model.CreatedEvent, error) {
	if s.provider == nil {
		return time.Time{}, nil, ErrProviderUnavailable
	}
	if durationMin == 0 {
		durationMin = DefaultDurationMinutes
	}

	start, err := ParseEventTime(startExpr, s.now().In(s.loc))
	if err != nil {
		return time.Time{}, nil, err
	}
	end := start.Add(time.Duration(durationMin) * time.Minute)

	created, err := s.provider.Insert(ctx, model.EventRequest{
		Title: title,
		Start: start,
		End:   end,
	})
	if err != nil {
		appLog.Error("insert event failed", err, "title", title)
		return start, nil, err
	}

	appLog.Info("event created", "title", title, "start", start.Format(time.RFC3339), "id", created.ID)
	return start, created, nil
}

// Remove maps a 1-based display index from the requester's current snapshot
// to a provider event ID and deletes it. Without a prior view the index is
// rejected outright; there is no fallback fetch. The returned record is the
// one the index resolved to, also on ErrEventNotFound so the caller can
// name it in the warning.
//
// The snapshot is intentionally not invalidated after a successful delete.
// Retrying the same index after an external change can therefore target the
// wrong event; this is a known, accepted race.
func (s *Service) Remove(ctx context.Context, requesterID string, index int) (model.EventRecord, error) {
	if s.provider == nil {
		return model.EventRecord{}, ErrProviderUnavailable
	}

	records, ok := s.cache.Get(requesterID)
	if !ok || len(records) == 0 {
		return model.EventRecord{}, &IndexError{Index: index, Len: 0}
	}
	if index < 1 || index > len(records) {
		return model.EventRecord{}, &IndexError{Index: index, Len: len(records)}
	}

	rec := records[index-1]
	if err := s.provider.Delete(ctx, rec.ID); err != nil {
		appLog.Error("delete event failed", err, "id", rec.ID, "index", index)
		return rec, err
	}

	appLog.Info("event deleted", "id", rec.ID, "index", index, "title", rec.Title)
	return rec, nil
}
