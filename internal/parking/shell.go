package parking

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Shell is the interactive operator console. It drives the instrumented
// lot through the same gates the HTTP handlers use.
type Shell struct {
	lot       *InstrumentedParkingLot
	entrance  *EntranceGate
	exitGate  *ExitGate
	scanner   *bufio.Scanner
	telemetry *TelemetryProvider
	rate      int64
}

func NewShell(telemetry *TelemetryProvider, hourlyRate int64) *Shell {
	return &Shell{
		scanner:   bufio.NewScanner(os.Stdin),
		telemetry: telemetry,
		rate:      hourlyRate,
	}
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for {
		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "create_parking_lot":
		s.handleCreate(ctx, parts)
	case "park":
		s.handlePark(ctx, parts)
	case "exit":
		s.handleExit(ctx, parts)
	case "ticket":
		s.handleTicket(parts)
	case "status":
		s.handleStatus(ctx)
	case "find":
		s.handleFind(ctx, parts)
	default:
		fmt.Printf("Unknown command: %s\n", parts[0])
	}
}

func (s *Shell) handleCreate(ctx context.Context, parts []string) {
	tracer := s.telemetry.Tracer()
	_, span := tracer.Start(ctx, "shell.create_parking_lot")
	defer span.End()

	if len(parts) != 4 {
		span.AddEvent("invalid_arguments")
		fmt.Println("Usage: create_parking_lot <compact> <regular> <large>")
		return
	}

	counts := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(parts[i+1])
		if err != nil || n < 0 {
			span.AddEvent("invalid_spot_count")
			fmt.Println("Invalid spot count")
			return
		}
		counts[i] = n
	}

	total := counts[0] + counts[1] + counts[2]
	if total == 0 {
		fmt.Println("At least one spot is required")
		return
	}

	span.SetAttributes(attribute.Int("garage.capacity", total))

	lot := NewSizedParkingLot(counts[0], counts[1], counts[2],
		NewHourlyPricing(s.rate), CashPayment{})
	instrumented, err := NewInstrumentedParkingLot(lot, s.telemetry)
	if err != nil {
		span.RecordError(err)
		fmt.Printf("Error creating parking lot: %s\n", err.Error())
		return
	}

	s.lot = instrumented
	s.entrance = NewEntranceGate(instrumented)
	s.exitGate = NewExitGate(instrumented)

	span.AddEvent("parking_lot_created")
	fmt.Printf("Created a parking lot with %d spots\n", total)
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	if s.lot == nil {
		fmt.Println("Parking lot not created")
		return
	}

	if len(parts) != 3 {
		fmt.Println("Usage: park <registration> <bike|car|truck>")
		return
	}

	vehicleType, err := ParseVehicleType(parts[2])
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	ticket, err := s.entrance.Enter(ctx, NewVehicle(parts[1], vehicleType))
	if err != nil {
		fmt.Println("Sorry, no spot available")
		return
	}

	fmt.Printf("Ticket %d issued for spot %d\n", ticket.ID, ticket.SpotNumber)
}

func (s *Shell) handleExit(ctx context.Context, parts []string) {
	if s.lot == nil {
		fmt.Println("Parking lot not created")
		return
	}

	if len(parts) != 2 {
		fmt.Println("Usage: exit <ticket_id>")
		return
	}

	ticketID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		fmt.Println("Invalid ticket ID")
		return
	}

	receipt, err := s.exitGate.Exit(ctx, ticketID)
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	fmt.Printf("Spot %d is free, fee charged: %d\n", receipt.SpotNumber, receipt.Fee)
}

func (s *Shell) handleTicket(parts []string) {
	if s.lot == nil {
		fmt.Println("Parking lot not created")
		return
	}

	if len(parts) != 2 {
		fmt.Println("Usage: ticket <ticket_id>")
		return
	}

	ticketID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		fmt.Println("Invalid ticket ID")
		return
	}

	ticket, found := s.lot.Ticket(ticketID)
	if !found {
		fmt.Println("Not found")
		return
	}

	fmt.Printf("Ticket %d: %s (%s) at spot %d since %s\n",
		ticket.ID, ticket.Vehicle.Registration, ticket.Vehicle.Type,
		ticket.SpotNumber, ticket.EntryTime.Format("15:04:05"))
}

func (s *Shell) handleStatus(ctx context.Context) {
	if s.lot == nil {
		fmt.Println("Parking lot not created")
		return
	}

	occupied := s.lot.Status(ctx)
	if len(occupied) == 0 {
		fmt.Println("Parking lot is empty")
		return
	}

	fmt.Println("Spot No.\tType\t\tRegistration No\tVehicle")
	for _, spot := range occupied {
		fmt.Printf("%d\t\t%s\t\t%s\t%s\n", spot.Number, spot.Type, spot.Registration, spot.VehicleType)
	}
}

func (s *Shell) handleFind(ctx context.Context, parts []string) {
	if s.lot == nil {
		fmt.Println("Parking lot not created")
		return
	}

	if len(parts) != 2 {
		fmt.Println("Usage: find <registration>")
		return
	}

	spotNumber, err := s.lot.FindVehicle(ctx, parts[1])
	if err != nil {
		fmt.Println("Not found")
		return
	}

	fmt.Printf("%d\n", spotNumber)
}
