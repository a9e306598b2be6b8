package parking

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrLotFull is the expected outcome when no eligible spot is free.
	ErrLotFull = errors.New("no spot available")
	// ErrInvalidTicket covers unknown and already-redeemed ticket IDs.
	ErrInvalidTicket = errors.New("invalid ticket")
	// ErrPaymentDeclined wraps the payment policy's refusal; the ticket
	// stays active and the exit may be retried.
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrVehicleNotFound is returned by registration lookups.
	ErrVehicleNotFound = errors.New("vehicle not found")
)

// ParkingLot is the single authority over the spot pool and the
// outstanding-ticket table. All entry and exit decisions serialize
// through its mutex; gates and handlers hold a reference to one shared
// instance and never mutate spots or tickets themselves.
type ParkingLot struct {
	mu           sync.Mutex
	spots        []*Spot
	tickets      map[int64]*Ticket
	nextTicketID int64
	pricing      PricingPolicy
	payment      PaymentPolicy
	now          func() time.Time
}

type LotOption func(*ParkingLot)

// WithClock replaces the entry/exit timestamp source. Used by tests to
// drive pricing scenarios without waiting.
func WithClock(now func() time.Time) LotOption {
	return func(pl *ParkingLot) {
		pl.now = now
	}
}

func NewParkingLot(pricing PricingPolicy, payment PaymentPolicy, opts ...LotOption) *ParkingLot {
	pl := &ParkingLot{
		tickets: make(map[int64]*Ticket),
		pricing: pricing,
		payment: payment,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

// NewSizedParkingLot builds a lot with the given number of compact,
// regular and large spots, numbered consecutively in that order.
func NewSizedParkingLot(compact, regular, large int, pricing PricingPolicy, payment PaymentPolicy, opts ...LotOption) *ParkingLot {
	pl := NewParkingLot(pricing, payment, opts...)
	for i := 0; i < compact; i++ {
		pl.AddSpot(Compact)
	}
	for i := 0; i < regular; i++ {
		pl.AddSpot(Regular)
	}
	for i := 0; i < large; i++ {
		pl.AddSpot(Large)
	}
	return pl
}

// AddSpot appends a spot to the pool and returns its assigned number.
// Spots are scanned in insertion order, so add order decides allocation
// preference.
func (pl *ParkingLot) AddSpot(spotType SpotType) int {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	number := len(pl.spots) + 1
	pl.spots = append(pl.spots, NewSpot(number, spotType))
	return number
}

// Park finds the first free spot matching the vehicle's type, occupies
// it and issues a ticket. A full lot is reported as ErrLotFull; it is an
// expected outcome, never retried here.
func (pl *ParkingLot) Park(vehicle Vehicle) (Ticket, error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	want := SpotTypeFor(vehicle.Type)
	for _, spot := range pl.spots {
		if spot.Type != want || spot.Occupied() {
			continue
		}

		spot.park(vehicle)
		pl.nextTicketID++
		ticket := &Ticket{
			ID:         pl.nextTicketID,
			Vehicle:    vehicle,
			SpotNumber: spot.Number,
			EntryTime:  pl.now(),
			State:      TicketActive,
		}
		pl.tickets[ticket.ID] = ticket
		return *ticket, nil
	}

	return Ticket{}, ErrLotFull
}

// Exit settles and redeems a ticket. Pricing and payment run outside the
// lock; the occupancy flip and table eviction re-enter the critical
// section together with the settlement result, so a ticket redeemed
// concurrently in the meantime is rejected rather than double-released.
func (pl *ParkingLot) Exit(ticketID int64) (Receipt, error) {
	pl.mu.Lock()
	ticket, ok := pl.tickets[ticketID]
	if !ok || ticket.State != TicketActive {
		pl.mu.Unlock()
		return Receipt{}, fmt.Errorf("ticket %d: %w", ticketID, ErrInvalidTicket)
	}
	entryTime := ticket.EntryTime
	pl.mu.Unlock()

	exitTime := pl.now()
	fee := pl.pricing.CalculateFee(entryTime, exitTime)
	if fee < 0 {
		panic(fmt.Sprintf("pricing policy returned negative fee %d for ticket %d", fee, ticketID))
	}

	if err := pl.payment.Pay(fee); err != nil {
		// Spot stays occupied and the ticket stays active so the
		// occupant can retry with the same ID.
		return Receipt{}, fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
	}

	pl.mu.Lock()
	defer pl.mu.Unlock()

	ticket, ok = pl.tickets[ticketID]
	if !ok || ticket.State != TicketActive {
		return Receipt{}, fmt.Errorf("ticket %d: %w", ticketID, ErrInvalidTicket)
	}

	pl.spots[ticket.SpotNumber-1].release()
	ticket.State = TicketRedeemed
	delete(pl.tickets, ticketID)

	return Receipt{
		TicketID:     ticket.ID,
		Registration: ticket.Vehicle.Registration,
		SpotNumber:   ticket.SpotNumber,
		Fee:          fee,
		Duration:     exitTime.Sub(entryTime),
		ExitTime:     exitTime,
	}, nil
}

// Ticket returns a snapshot of an outstanding ticket.
func (pl *ParkingLot) Ticket(ticketID int64) (Ticket, bool) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	ticket, ok := pl.tickets[ticketID]
	if !ok {
		return Ticket{}, false
	}
	return *ticket, true
}

// ActiveTickets reports how many tickets are outstanding.
func (pl *ParkingLot) ActiveTickets() int {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return len(pl.tickets)
}

func (pl *ParkingLot) Capacity() int {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return len(pl.spots)
}

func (pl *ParkingLot) OccupiedCount() int {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	count := 0
	for _, spot := range pl.spots {
		if spot.Occupied() {
			count++
		}
	}
	return count
}

// SpotStatus is a read-only view of one spot.
type SpotStatus struct {
	Number       int
	Type         SpotType
	Occupied     bool
	Registration string
	VehicleType  VehicleType
}

// Status returns the occupied spots in spot-number order.
func (pl *ParkingLot) Status() []SpotStatus {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	var occupied []SpotStatus
	for _, spot := range pl.spots {
		if !spot.Occupied() {
			continue
		}
		occupied = append(occupied, SpotStatus{
			Number:       spot.Number,
			Type:         spot.Type,
			Occupied:     true,
			Registration: spot.Vehicle().Registration,
			VehicleType:  spot.Vehicle().Type,
		})
	}

	sort.Slice(occupied, func(i, j int) bool {
		return occupied[i].Number < occupied[j].Number
	})

	return occupied
}

// FindVehicle returns the spot number holding the given registration.
func (pl *ParkingLot) FindVehicle(registration string) (int, error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	for _, spot := range pl.spots {
		if spot.Occupied() && spot.Vehicle().Registration == registration {
			return spot.Number, nil
		}
	}
	return 0, ErrVehicleNotFound
}
