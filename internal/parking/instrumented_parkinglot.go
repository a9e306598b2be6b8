package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedParkingLot wraps the lot with traces and metrics. All
// observability lives here; the lot itself only returns values.
type InstrumentedParkingLot struct {
	*ParkingLot
	telemetry *TelemetryProvider

	// Metrics
	parkOperations    metric.Int64Counter
	exitOperations    metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	totalSpotsGauge   metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
	collectedFees     metric.Int64Histogram
}

func NewInstrumentedParkingLot(lot *ParkingLot, telemetry *TelemetryProvider) (*InstrumentedParkingLot, error) {
	meter := telemetry.Meter()

	parkOperations, err := meter.Int64Counter("garage_park_operations_total",
		metric.WithDescription("Total number of entry requests"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	exitOperations, err := meter.Int64Counter("garage_exit_operations_total",
		metric.WithDescription("Total number of exit requests"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("garage_occupancy",
		metric.WithDescription("Current number of occupied spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSpotsGauge, err := meter.Int64UpDownCounter("garage_total_spots",
		metric.WithDescription("Total number of spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("garage_operation_duration_seconds",
		metric.WithDescription("Duration of garage operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	collectedFees, err := meter.Int64Histogram("garage_collected_fee",
		metric.WithDescription("Fees collected on settled exits"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	ipl := &InstrumentedParkingLot{
		ParkingLot:        lot,
		telemetry:         telemetry,
		parkOperations:    parkOperations,
		exitOperations:    exitOperations,
		occupancyGauge:    occupancyGauge,
		totalSpotsGauge:   totalSpotsGauge,
		operationDuration: operationDuration,
		collectedFees:     collectedFees,
	}

	totalSpotsGauge.Add(context.Background(), int64(lot.Capacity()))

	return ipl, nil
}

func (ipl *InstrumentedParkingLot) AddSpot(ctx context.Context, spotType SpotType) int {
	number := ipl.ParkingLot.AddSpot(spotType)
	ipl.totalSpotsGauge.Add(ctx, 1, metric.WithAttributes(
		attribute.String("spot_type", spotType.String()),
	))
	return number
}

func (ipl *InstrumentedParkingLot) Park(ctx context.Context, vehicle Vehicle) (Ticket, error) {
	tracer := ipl.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "garage.park",
		trace.WithAttributes(
			attribute.String("vehicle.registration", vehicle.Registration),
			attribute.String("vehicle.type", vehicle.Type.String()),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_free_spot")

	ticket, err := ipl.ParkingLot.Park(vehicle)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "park"),
		attribute.String("vehicle_type", vehicle.Type.String()),
	}

	if err != nil {
		// A full lot is an expected denial, not a span failure.
		if errors.Is(err, ErrLotFull) {
			span.AddEvent("lot_full")
			labels = append(labels, attribute.String("status", "denied"))
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			labels = append(labels, attribute.String("status", "failed"))
		}
		ipl.parkOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(
			attribute.Int64("ticket.id", ticket.ID),
			attribute.Int("allocated_spot", ticket.SpotNumber),
		)
		span.AddEvent("ticket_issued", trace.WithAttributes(
			attribute.Int64("ticket_id", ticket.ID),
			attribute.Int("spot_number", ticket.SpotNumber),
		))

		ipl.parkOperations.Add(ctx, 1, metric.WithAttributes(labels...))
		ipl.occupancyGauge.Add(ctx, 1)
	}

	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (ipl *InstrumentedParkingLot) Exit(ctx context.Context, ticketID int64) (Receipt, error) {
	tracer := ipl.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "garage.exit",
		trace.WithAttributes(
			attribute.Int64("ticket.id", ticketID),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("settling_ticket")

	receipt, err := ipl.ParkingLot.Exit(ticketID)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "exit"),
	}

	switch {
	case errors.Is(err, ErrInvalidTicket):
		span.AddEvent("ticket_rejected")
		labels = append(labels, attribute.String("status", "invalid_ticket"))
	case errors.Is(err, ErrPaymentDeclined):
		span.AddEvent("payment_declined")
		labels = append(labels, attribute.String("status", "payment_declined"))
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
	default:
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(
			attribute.Int("spot_number", receipt.SpotNumber),
			attribute.Int64("fee", receipt.Fee),
		)
		span.AddEvent("spot_released", trace.WithAttributes(
			attribute.Int("spot_number", receipt.SpotNumber),
		))
		ipl.occupancyGauge.Add(ctx, -1)
		ipl.collectedFees.Record(ctx, receipt.Fee, metric.WithAttributes(labels...))
	}

	ipl.exitOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return receipt, err
}

func (ipl *InstrumentedParkingLot) Status(ctx context.Context) []SpotStatus {
	tracer := ipl.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "garage.status")
	defer span.End()

	start := time.Now()

	occupied := ipl.ParkingLot.Status()

	span.SetAttributes(
		attribute.Int("occupied_spots_count", len(occupied)),
		attribute.Int("total_capacity", ipl.Capacity()),
	)

	labels := []attribute.KeyValue{
		attribute.String("operation", "status"),
		attribute.String("status", "success"),
	}
	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return occupied
}

func (ipl *InstrumentedParkingLot) FindVehicle(ctx context.Context, registration string) (int, error) {
	tracer := ipl.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "garage.find_vehicle",
		trace.WithAttributes(
			attribute.String("vehicle.registration", registration),
		))
	defer span.End()

	start := time.Now()

	spotNumber, err := ipl.ParkingLot.FindVehicle(registration)

	labels := []attribute.KeyValue{
		attribute.String("operation", "find_vehicle"),
	}

	if err != nil {
		span.AddEvent("vehicle_not_found")
		labels = append(labels, attribute.String("status", "not_found"))
	} else {
		span.SetAttributes(attribute.Int("spot_number", spotNumber))
		span.AddEvent("vehicle_found", trace.WithAttributes(
			attribute.Int("spot_number", spotNumber),
		))
		labels = append(labels, attribute.String("status", "found"))
	}

	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return spotNumber, err
}
