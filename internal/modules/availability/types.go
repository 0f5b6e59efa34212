package availability

import "time"

type Kind string

const (
	KindReservation  Kind = "reservation"
	KindRental       Kind = "rental"
	KindServiceEvent Kind = "service_event"
)

// Conflict describes one allocation that collides with the requested window,
// with enough detail to render a rejection message without a second lookup.
type Conflict struct {
	Kind     Kind       `json:"kind"`
	SourceID int64      `json:"source_id"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
	Status   string     `json:"status"`
	Label    string     `json:"label,omitempty"`
}

type Result struct {
	Available bool       `json:"available"`
	Conflicts []Conflict `json:"conflicts"`
}

// Exclusions name the records being moved, which must not conflict with
// themselves.
type Exclusions struct {
	ReservationID int64
	RentalID      int64
}

func (c Conflict) Interval() Interval {
	return Interval{Start: c.Start, End: c.End}
}
