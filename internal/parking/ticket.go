package parking

import "time"

type TicketState int

const (
	TicketActive TicketState = iota
	TicketRedeemed
)

func (ts TicketState) String() string {
	if ts == TicketRedeemed {
		return "redeemed"
	}
	return "active"
}

// Ticket binds an occupant to a spot from entry until a settled exit.
// It references the spot by number rather than holding a pointer into
// the pool, and carries a copy of the vehicle value.
type Ticket struct {
	ID         int64
	Vehicle    Vehicle
	SpotNumber int
	EntryTime  time.Time
	State      TicketState
}

// Receipt is returned once an exit has been priced and settled.
type Receipt struct {
	TicketID     int64
	Registration string
	SpotNumber   int
	Fee          int64
	Duration     time.Duration
	ExitTime     time.Time
}
