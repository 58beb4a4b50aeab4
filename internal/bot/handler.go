package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalbodeule/calbot/internal/llm"
	appLog "github.com/dalbodeule/calbot/internal/log"
	"github.com/dalbodeule/calbot/internal/schedule"
)

// Handler is the command boundary: it runs schedule and search commands and
// converts every failure into a user-facing text outcome. Nothing below
// this layer is allowed to surface as a crash.
type Handler struct {
	schedule *schedule.Service
	llm      *llm.Client
}

// New constructs a Handler. llm may be nil (search disabled).
func New(s *schedule.Service, l *llm.Client) *Handler {
	return &Handler{schedule: s, llm: l}
}

// ScheduleHelp is the response to a bare /schedule invocation.
func (h *Handler) ScheduleHelp() string {
	return "**Schedule Commands:**\n" +
		"`/schedule view [day]` - Show the schedule for today or a specific day (e.g. 'tomorrow', 'monday', 'April 25').\n" +
		"`/schedule add <title> <time> [duration]` - Add an event (e.g. title 'Meeting', time '3pm', duration 60).\n" +
		"`/schedule remove <id>` - Remove an event using the ID number shown by `/schedule view`."
}

// ScheduleView renders the requested day and remembers the view for later
// /schedule remove calls by the same requester.
func (h *Handler) ScheduleView(ctx context.Context, requesterID, dayExpr string) string {
	if dayExpr == "" {
		dayExpr = "today"
	}

	view, err := h.schedule.View(ctx, requesterID, dayExpr)
	if err != nil {
		if errors.Is(err, schedule.ErrDateNotRecognized) {
			return fmt.Sprintf("Error: Could not understand the date '%s'. Try 'today', 'tomorrow', 'monday', 'April 25', etc.", dayExpr)
		}
		return h.failure("schedule view", err)
	}
	return view.Summary
}

// ScheduleAdd creates an event at the parsed time. durationMin of zero
// falls back to the engine default.
func (h *Handler) ScheduleAdd(ctx context.Context, requesterID, title, timeExpr string, durationMin int) string {
	start, created, err := h.schedule.Add(ctx, title, timeExpr, durationMin)
	if err != nil {
		if errors.Is(err, schedule.ErrTimeParse) {
			return fmt.Sprintf("Error: Could not understand the time '%s'. Please use formats like '3pm', '15:00', 'tomorrow 10am', '2025-04-20 14:30'.", timeExpr)
		}
		return h.failure("schedule add", err)
	}

	msg := fmt.Sprintf("✅ Event added: '%s' on %s.", title, start.Format("Jan 02 at 03:04 PM"))
	if created.HTMLLink != "" {
		msg += fmt.Sprintf(" Link: <%s>", created.HTMLLink)
	}
	return msg
}

// ScheduleRemove deletes the event behind a display index from the
// requester's last view.
func (h *Handler) ScheduleRemove(ctx context.Context, requesterID string, index int) string {
	rec, err := h.schedule.Remove(ctx, requesterID, index)
	if err != nil {
		var idxErr *schedule.IndexError
		switch {
		case errors.As(err, &idxErr):
			if idxErr.Len == 0 {
				return "Please use `/schedule view` first to see the list of events and their IDs."
			}
			return fmt.Sprintf("Error: Invalid ID '%d'. Valid IDs are 1 to %d from the last `/schedule view`.", index, idxErr.Len)
		case errors.Is(err, schedule.ErrEventNotFound):
			return "⚠️ Event not found. It might have been already deleted."
		default:
			return h.failure("schedule remove", err)
		}
	}

	return fmt.Sprintf("🗑️ Event removed: [%d] %s: %s", index, rec.TimeLabel, rec.Title)
}

// Search asks the configured LLM to research the query.
func (h *Handler) Search(ctx context.Context, query string) string {
	if h.llm == nil {
		return "Sorry, the LLM search functionality is not configured."
	}

	answer, err := h.llm.Ask(ctx, query)
	if err != nil {
		return "Sorry, an error occurred while contacting the LLM."
	}
	return answer
}

// failure converts classified provider errors into informative text and
// everything else into a generic message; unclassified detail is only
// logged, never shown.
func (h *Handler) failure(op string, err error) string {
	switch {
	case errors.Is(err, schedule.ErrProviderUnavailable):
		return "Error: Google Calendar connection is not available."
	case errors.Is(err, schedule.ErrRequestFailed):
		return fmt.Sprintf("Error: The calendar request failed: %v", err)
	default:
		appLog.Error("unexpected command failure", err, "op", op)
		return "An unexpected error occurred. Please try again later."
	}
}
