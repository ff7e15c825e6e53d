package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectTicketScored(t *testing.T) {
	assert.Equal(t, "scorecard.ticket.42.scored", SubjectTicketScored(42))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish("anything", map[string]int{"a": 1}))
	assert.NotPanics(t, p.Close)
}
