package parking

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests pick the entry and exit timestamps the lot sees.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type declinePayment struct {
	declined int
}

func (p *declinePayment) Pay(amount int64) error {
	p.declined++
	return errors.New("card declined")
}

func newTestLot(compact, regular, large int, payment PaymentPolicy) (*ParkingLot, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	lot := NewSizedParkingLot(compact, regular, large,
		NewHourlyPricing(DefaultHourlyRate), payment, WithClock(clock.Now))
	return lot, clock
}

func TestNewSizedParkingLot(t *testing.T) {
	lot, _ := newTestLot(2, 3, 1, CashPayment{})

	if lot.Capacity() != 6 {
		t.Errorf("Expected capacity 6, got %d", lot.Capacity())
	}
	if lot.OccupiedCount() != 0 {
		t.Errorf("Expected empty lot, got %d occupied", lot.OccupiedCount())
	}
}

func TestParkAssignsFirstFreeMatchingSpot(t *testing.T) {
	lot, _ := newTestLot(1, 2, 1, CashPayment{})

	// Spot numbering: 1 compact, 2-3 regular, 4 large.
	ticket, err := lot.Park(NewVehicle("KA01HH1234", Car))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if ticket.SpotNumber != 2 {
		t.Errorf("Expected spot 2, got %d", ticket.SpotNumber)
	}
	if ticket.ID != 1 {
		t.Errorf("Expected ticket ID 1, got %d", ticket.ID)
	}

	ticket, err = lot.Park(NewVehicle("KA01HH9999", Car))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if ticket.SpotNumber != 3 {
		t.Errorf("Expected spot 3, got %d", ticket.SpotNumber)
	}
	if ticket.ID != 2 {
		t.Errorf("Expected ticket ID 2, got %d", ticket.ID)
	}

	ticket, err = lot.Park(NewVehicle("KA01BB0001", Truck))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if ticket.SpotNumber != 4 {
		t.Errorf("Expected truck on spot 4, got %d", ticket.SpotNumber)
	}
}

func TestParkDeniedWhenCategoryFull(t *testing.T) {
	lot, _ := newTestLot(0, 1, 0, CashPayment{})

	ticket, err := lot.Park(NewVehicle("X1", Car))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if ticket.ID != 1 {
		t.Errorf("Expected ticket ID 1, got %d", ticket.ID)
	}

	_, err = lot.Park(NewVehicle("X2", Car))
	if !errors.Is(err, ErrLotFull) {
		t.Errorf("Expected ErrLotFull, got %v", err)
	}
}

func TestParkIgnoresFreeSpotsOfOtherTypes(t *testing.T) {
	lot, _ := newTestLot(1, 0, 1, CashPayment{})

	// Compact and large spots are free but a car needs a regular spot.
	_, err := lot.Park(NewVehicle("KA01HH1234", Car))
	if !errors.Is(err, ErrLotFull) {
		t.Errorf("Expected ErrLotFull, got %v", err)
	}
}

func TestExitSettlesAndReleasesSpot(t *testing.T) {
	lot, clock := newTestLot(0, 1, 0, CashPayment{})

	ticket, err := lot.Park(NewVehicle("KA01HH1234", Car))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	clock.Advance(30 * time.Minute)

	receipt, err := lot.Exit(ticket.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if receipt.Fee != 50 {
		t.Errorf("Expected fee 50 for 30 minutes, got %d", receipt.Fee)
	}
	if receipt.SpotNumber != ticket.SpotNumber {
		t.Errorf("Expected spot %d on receipt, got %d", ticket.SpotNumber, receipt.SpotNumber)
	}
	if lot.OccupiedCount() != 0 {
		t.Errorf("Expected spot released, got %d occupied", lot.OccupiedCount())
	}

	// The spot is reusable after a settled exit.
	next, err := lot.Park(NewVehicle("KA01BB0001", Car))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if next.SpotNumber != ticket.SpotNumber {
		t.Errorf("Expected reuse of spot %d, got %d", ticket.SpotNumber, next.SpotNumber)
	}
	if next.ID != ticket.ID+1 {
		t.Errorf("Expected ticket ID %d, got %d", ticket.ID+1, next.ID)
	}
}

func TestExitFeeRoundsUpToStartedHours(t *testing.T) {
	lot, clock := newTestLot(0, 1, 0, CashPayment{})

	ticket, err := lot.Park(NewVehicle("KA01HH1234", Car))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	clock.Advance(2*time.Hour + time.Second)

	receipt, err := lot.Exit(ticket.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if receipt.Fee != 150 {
		t.Errorf("Expected fee 150 for 2h1s, got %d", receipt.Fee)
	}
}

func TestExitUnknownTicket(t *testing.T) {
	lot, _ := newTestLot(1, 1, 1, CashPayment{})

	_, err := lot.Exit(999)
	if !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("Expected ErrInvalidTicket, got %v", err)
	}
	if lot.OccupiedCount() != 0 || lot.ActiveTickets() != 0 {
		t.Error("Expected no state change on invalid ticket")
	}
}

func TestExitTwiceRejectsSecondCall(t *testing.T) {
	lot, _ := newTestLot(0, 1, 0, CashPayment{})

	ticket, err := lot.Park(NewVehicle("KA01HH1234", Car))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	if _, err := lot.Exit(ticket.ID); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	_, err = lot.Exit(ticket.ID)
	if !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("Expected ErrInvalidTicket on second exit, got %v", err)
	}
	if lot.OccupiedCount() != 0 || lot.ActiveTickets() != 0 {
		t.Error("Expected no state change on repeated exit")
	}
}

func TestDeclinedPaymentPreservesState(t *testing.T) {
	payment := &declinePayment{}
	lot, clock := newTestLot(0, 1, 0, payment)

	ticket, err := lot.Park(NewVehicle("KA01HH1234", Car))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	clock.Advance(10 * time.Minute)

	_, err = lot.Exit(ticket.ID)
	if !errors.Is(err, ErrPaymentDeclined) {
		t.Fatalf("Expected ErrPaymentDeclined, got %v", err)
	}
	if payment.declined != 1 {
		t.Errorf("Expected 1 payment attempt, got %d", payment.declined)
	}

	if lot.OccupiedCount() != 1 {
		t.Error("Expected spot to remain occupied after declined payment")
	}
	kept, found := lot.Ticket(ticket.ID)
	if !found {
		t.Fatal("Expected ticket to remain retrievable after declined payment")
	}
	if kept.State != TicketActive {
		t.Errorf("Expected ticket to stay active, got %s", kept.State)
	}

	// Retry with a working payment succeeds with the same ticket ID.
	lot.payment = CashPayment{}
	receipt, err := lot.Exit(ticket.ID)
	if err != nil {
		t.Fatalf("Unexpected error on retry: %s", err.Error())
	}
	if receipt.TicketID != ticket.ID {
		t.Errorf("Expected receipt for ticket %d, got %d", ticket.ID, receipt.TicketID)
	}
	if lot.OccupiedCount() != 0 {
		t.Error("Expected spot released after settled retry")
	}
}

func TestActiveTicketsMatchOccupiedSpots(t *testing.T) {
	lot, _ := newTestLot(2, 2, 2, CashPayment{})

	vehicles := []Vehicle{
		NewVehicle("B1", Bike),
		NewVehicle("C1", Car),
		NewVehicle("T1", Truck),
		NewVehicle("C2", Car),
	}

	var tickets []Ticket
	for _, v := range vehicles {
		ticket, err := lot.Park(v)
		if err != nil {
			t.Fatalf("Unexpected error: %s", err.Error())
		}
		tickets = append(tickets, ticket)
	}

	checkBijection := func() {
		if lot.ActiveTickets() != lot.OccupiedCount() {
			t.Fatalf("Invariant broken: %d active tickets, %d occupied spots",
				lot.ActiveTickets(), lot.OccupiedCount())
		}
		seen := make(map[int]int64)
		for _, status := range lot.Status() {
			if !status.Occupied {
				t.Fatalf("Status() returned free spot %d", status.Number)
			}
			if prev, dup := seen[status.Number]; dup {
				t.Fatalf("Spot %d referenced twice (tickets %d)", status.Number, prev)
			}
			seen[status.Number] = 1
		}
	}

	checkBijection()

	if _, err := lot.Exit(tickets[1].ID); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	checkBijection()

	if lot.ActiveTickets() != 3 {
		t.Errorf("Expected 3 active tickets, got %d", lot.ActiveTickets())
	}
}

func TestNoDoubleAllocationUnderContention(t *testing.T) {
	lot, _ := newTestLot(0, 1, 0, CashPayment{})

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan Ticket, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ticket, err := lot.Park(NewVehicle(fmt.Sprintf("CAR-%d", n), Car))
			if err == nil {
				results <- ticket
			}
		}(i)
	}
	wg.Wait()
	close(results)

	var winners []Ticket
	for ticket := range results {
		winners = append(winners, ticket)
	}
	if len(winners) != 1 {
		t.Fatalf("Expected exactly one successful park, got %d", len(winners))
	}
	if lot.OccupiedCount() != 1 {
		t.Errorf("Expected 1 occupied spot, got %d", lot.OccupiedCount())
	}
}

func TestFindVehicle(t *testing.T) {
	lot, _ := newTestLot(1, 2, 0, CashPayment{})

	lot.Park(NewVehicle("KA01HH1234", Car))
	lot.Park(NewVehicle("KA01HH9999", Car))

	spotNumber, err := lot.FindVehicle("KA01HH9999")
	if err != nil {
		t.Errorf("Unexpected error: %s", err.Error())
	}
	if spotNumber != 3 {
		t.Errorf("Expected spot 3, got %d", spotNumber)
	}

	_, err = lot.FindVehicle("NOTFOUND")
	if !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("Expected ErrVehicleNotFound, got %v", err)
	}
}

func TestStatusListsOccupiedSpotsInOrder(t *testing.T) {
	lot, _ := newTestLot(0, 4, 0, CashPayment{})

	t1, _ := lot.Park(NewVehicle("A", Car))
	lot.Park(NewVehicle("B", Car))
	t3, _ := lot.Park(NewVehicle("C", Car))
	lot.Park(NewVehicle("D", Car))

	lot.Exit(t1.ID)
	lot.Exit(t3.ID)

	status := lot.Status()
	expected := []int{2, 4}
	if len(status) != len(expected) {
		t.Fatalf("Expected %d occupied spots, got %d", len(expected), len(status))
	}
	for i, spot := range status {
		if spot.Number != expected[i] {
			t.Errorf("Expected spot %d at position %d, got %d", expected[i], i, spot.Number)
		}
	}
}

func TestExitPanicsOnNegativeFee(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	lot := NewParkingLot(negativePricing{}, CashPayment{}, WithClock(clock.Now))
	lot.AddSpot(Regular)

	ticket, err := lot.Park(NewVehicle("KA01HH1234", Car))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on negative fee from pricing policy")
		}
	}()
	lot.Exit(ticket.ID)
}

type negativePricing struct{}

func (negativePricing) CalculateFee(entryTime, exitTime time.Time) int64 {
	return -1
}
