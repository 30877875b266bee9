package models

import (
	"slices"
	"strings"
	"time"
)

// Event is owned by its creator; Attendees only ever grows and keeps join order.
type Event struct {
	ID          string
	Title       string
	Description *string
	Date        time.Time
	CreatedBy   string
	Attendees   []string
	CreatedAt   time.Time
}

// HasAttendee reports whether userID already joined the event.
func (e *Event) HasAttendee(userID string) bool {
	return slices.Contains(e.Attendees, userID)
}

// EventFilter narrows list/count queries. Search is a case-insensitive
// substring of the title, matched as given; blank means no filter.
type EventFilter struct {
	Search string
}

// Term returns the search term, or "" when the filter is a no-op.
// Surrounding whitespace of a non-blank term is significant.
func (f EventFilter) Term() string {
	if strings.TrimSpace(f.Search) == "" {
		return ""
	}
	return f.Search
}

// Matches applies the filter to an in-memory event.
func (f EventFilter) Matches(e *Event) bool {
	term := f.Term()
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Title), strings.ToLower(term))
}
