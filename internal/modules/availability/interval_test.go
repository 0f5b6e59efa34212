package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func TestIntervalOverlaps(t *testing.T) {
	existing := Closed(day(1), day(5))

	tests := []struct {
		name      string
		candidate Interval
		want      bool
	}{
		{"overlapping tail", Closed(day(4), day(8)), true},
		{"touching end", Closed(day(5), day(8)), false},
		{"touching start", Closed(day(0), day(1)), false},
		{"contained", Closed(day(2), day(3)), true},
		{"containing", Closed(day(0), day(10)), true},
		{"disjoint", Closed(day(10), day(12)), false},
		{"open-ended before", OpenEnded(day(3)), true},
		{"open-ended after", OpenEnded(day(5)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, existing.Overlaps(tt.candidate))
			assert.Equal(t, tt.want, tt.candidate.Overlaps(existing))
		})
	}
}

func TestIntervalOpenEndedAlwaysBlocksFuture(t *testing.T) {
	maintenance := OpenEnded(day(10))

	assert.True(t, maintenance.Overlaps(Closed(day(10).AddDate(5, 0, 0), day(11).AddDate(5, 0, 0))))
	assert.False(t, maintenance.Overlaps(Closed(day(1), day(10))))
	assert.True(t, maintenance.Overlaps(OpenEnded(day(1))))
}

func TestIntervalValid(t *testing.T) {
	assert.True(t, Closed(day(1), day(2)).Valid())
	assert.False(t, Closed(day(2), day(2)).Valid())
	assert.False(t, Closed(day(3), day(2)).Valid())
	assert.True(t, OpenEnded(day(1)).Valid())
}
