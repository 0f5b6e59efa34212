package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatConflicts(t *testing.T) {
	end := day(5)
	msg := FormatConflicts([]Conflict{
		{Kind: KindReservation, SourceID: 7, Start: day(1), End: &end, Status: "confirmed", Label: "reservation #7"},
		{Kind: KindServiceEvent, SourceID: 3, Start: day(9), Status: "planned"},
	})

	assert.Equal(t,
		"vehicle is not available: reservation #7 [2024-06-01 00:00, 2024-06-05 00:00) confirmed; service_event #3 [2024-06-09 00:00, open-ended) planned",
		msg)
	assert.Equal(t, "vehicle is available", FormatConflicts(nil))
}
