package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventFilter(t *testing.T) {
	e := &Event{Title: "Go Meetup Berlin"}

	assert.True(t, EventFilter{}.Matches(e))
	assert.True(t, EventFilter{Search: "   "}.Matches(e))
	assert.True(t, EventFilter{Search: "meetup"}.Matches(e))
	assert.True(t, EventFilter{Search: " BERLIN"}.Matches(e))
	assert.False(t, EventFilter{Search: "rust"}.Matches(e))
	assert.Equal(t, "", EventFilter{Search: "\t\n"}.Term())

	// a non-blank term keeps its whitespace
	assert.Equal(t, " Berlin", EventFilter{Search: " Berlin"}.Term())
	assert.False(t, EventFilter{Search: " Berlin"}.Matches(&Event{Title: "GoBerlin"}))
	assert.False(t, EventFilter{Search: "Berlin "}.Matches(e))
}

func TestEvent_HasAttendee(t *testing.T) {
	e := &Event{Attendees: []string{"u1", "u2"}}
	assert.True(t, e.HasAttendee("u2"))
	assert.False(t, e.HasAttendee("u3"))
}
