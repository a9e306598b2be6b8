package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"parking-garage/internal/parking"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	mu        sync.RWMutex
	lot       *parking.InstrumentedParkingLot
	entrance  *parking.EntranceGate
	exitGate  *parking.ExitGate
	telemetry *parking.TelemetryProvider

	serviceName string
	hourlyRate  int64
}

func NewHandler(telemetry *parking.TelemetryProvider, serviceName string, hourlyRate int64) *Handler {
	return &Handler{
		telemetry:   telemetry,
		serviceName: serviceName,
		hourlyRate:  hourlyRate,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": h.serviceName,
		"meta":    extractMeta(r.Context()),
	})
}

func (h *Handler) CreateGarage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req GarageCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CompactSpots < 0 || req.RegularSpots < 0 || req.LargeSpots < 0 {
		WriteError(ctx, w, http.StatusBadRequest, "Spot counts must not be negative")
		return
	}
	if req.CompactSpots+req.RegularSpots+req.LargeSpots == 0 {
		WriteError(ctx, w, http.StatusBadRequest, "At least one spot is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	lot := parking.NewSizedParkingLot(
		req.CompactSpots, req.RegularSpots, req.LargeSpots,
		parking.NewHourlyPricing(h.hourlyRate),
		parking.CashPayment{},
	)

	instrumented, err := parking.NewInstrumentedParkingLot(lot, h.telemetry)
	if err != nil {
		WriteError(ctx, w, http.StatusInternalServerError, "Failed to create garage")
		return
	}

	h.lot = instrumented
	h.entrance = parking.NewEntranceGate(instrumented)
	h.exitGate = parking.NewExitGate(instrumented)

	WriteSuccess(ctx, w, "Garage created successfully", map[string]any{
		"capacity":      req.CompactSpots + req.RegularSpots + req.LargeSpots,
		"compact_spots": req.CompactSpots,
		"regular_spots": req.RegularSpots,
		"large_spots":   req.LargeSpots,
	})
}

func (h *Handler) garage() (*parking.InstrumentedParkingLot, *parking.EntranceGate, *parking.ExitGate, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lot, h.entrance, h.exitGate, h.lot != nil
}

func (h *Handler) ParkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, entrance, _, ok := h.garage()
	if !ok {
		WriteError(ctx, w, http.StatusBadRequest, "Garage not created. Create garage first")
		return
	}

	var req ParkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Registration == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration is required")
		return
	}
	vehicleType, err := parking.ParseVehicleType(req.VehicleType)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := entrance.Enter(ctx, parking.NewVehicle(req.Registration, vehicleType))
	if err != nil {
		if errors.Is(err, parking.ErrLotFull) {
			WriteError(ctx, w, http.StatusConflict, "No spot available for "+vehicleType.String())
			return
		}
		WriteError(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle parked successfully", ticketResponse(ticket))
}

func (h *Handler) ExitVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, _, exitGate, ok := h.garage()
	if !ok {
		WriteError(ctx, w, http.StatusBadRequest, "Garage not created. Create garage first")
		return
	}

	var req ExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TicketID <= 0 {
		WriteError(ctx, w, http.StatusBadRequest, "Ticket ID must be greater than 0")
		return
	}

	receipt, err := exitGate.Exit(ctx, req.TicketID)
	if err != nil {
		switch {
		case errors.Is(err, parking.ErrInvalidTicket):
			WriteError(ctx, w, http.StatusNotFound, "Unknown or already redeemed ticket")
		case errors.Is(err, parking.ErrPaymentDeclined):
			WriteError(ctx, w, http.StatusPaymentRequired, "Payment declined; ticket remains active")
		default:
			WriteError(ctx, w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	WriteSuccess(ctx, w, "Exit settled successfully", ReceiptResponse{
		TicketID:     receipt.TicketID,
		Registration: receipt.Registration,
		SpotNumber:   receipt.SpotNumber,
		Fee:          receipt.Fee,
		DurationSecs: receipt.Duration.Seconds(),
		ExitTime:     receipt.ExitTime,
	})
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot, _, _, ok := h.garage()
	if !ok {
		WriteError(ctx, w, http.StatusBadRequest, "Garage not created. Create garage first")
		return
	}

	ticketID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	ticket, found := lot.Ticket(ticketID)
	if !found {
		WriteError(ctx, w, http.StatusNotFound, "Ticket not found")
		return
	}

	WriteSuccess(ctx, w, "Ticket found", ticketResponse(ticket))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot, _, _, ok := h.garage()
	if !ok {
		WriteError(ctx, w, http.StatusBadRequest, "Garage not created. Create garage first")
		return
	}

	occupied := lot.Status(ctx)

	capacity := lot.Capacity()
	spots := make([]SpotStatus, 0, len(occupied))
	for _, spot := range occupied {
		spots = append(spots, SpotStatus{
			SpotNumber:   spot.Number,
			SpotType:     spot.Type.String(),
			Occupied:     true,
			Registration: spot.Registration,
			VehicleType:  spot.VehicleType.String(),
		})
	}

	WriteSuccess(ctx, w, "Status retrieved successfully", StatusResponse{
		Capacity:  capacity,
		Occupied:  len(occupied),
		Available: capacity - len(occupied),
		Spots:     spots,
	})
}

func (h *Handler) FindByRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot, _, _, ok := h.garage()
	if !ok {
		WriteError(ctx, w, http.StatusBadRequest, "Garage not created. Create garage first")
		return
	}

	registration := chi.URLParam(r, "registration")
	if registration == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration is required")
		return
	}

	spotNumber, err := lot.FindVehicle(ctx, registration)
	if err != nil {
		WriteError(ctx, w, http.StatusNotFound, "Vehicle not found")
		return
	}

	WriteSuccess(ctx, w, "Vehicle found", FindVehicleResponse{
		SpotNumber:   spotNumber,
		Registration: registration,
	})
}

func ticketResponse(ticket parking.Ticket) TicketResponse {
	return TicketResponse{
		TicketID:     ticket.ID,
		Registration: ticket.Vehicle.Registration,
		VehicleType:  ticket.Vehicle.Type.String(),
		SpotNumber:   ticket.SpotNumber,
		EntryTime:    ticket.EntryTime,
		State:        ticket.State.String(),
	}
}
