package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type GarageCreateRequest struct {
	CompactSpots int `json:"compact_spots"`
	RegularSpots int `json:"regular_spots"`
	LargeSpots   int `json:"large_spots"`
}

type ParkRequest struct {
	Registration string `json:"registration"`
	VehicleType  string `json:"vehicle_type"`
}

type ExitRequest struct {
	TicketID int64 `json:"ticket_id"`
}

type TicketResponse struct {
	TicketID     int64     `json:"ticket_id"`
	Registration string    `json:"registration"`
	VehicleType  string    `json:"vehicle_type"`
	SpotNumber   int       `json:"spot_number"`
	EntryTime    time.Time `json:"entry_time"`
	State        string    `json:"state"`
}

type ReceiptResponse struct {
	TicketID     int64     `json:"ticket_id"`
	Registration string    `json:"registration"`
	SpotNumber   int       `json:"spot_number"`
	Fee          int64     `json:"fee"`
	DurationSecs float64   `json:"duration_seconds"`
	ExitTime     time.Time `json:"exit_time"`
}

type FindVehicleResponse struct {
	SpotNumber   int    `json:"spot_number"`
	Registration string `json:"registration"`
}

type SpotStatus struct {
	SpotNumber   int    `json:"spot_number"`
	SpotType     string `json:"spot_type"`
	Occupied     bool   `json:"occupied"`
	Registration string `json:"registration,omitempty"`
	VehicleType  string `json:"vehicle_type,omitempty"`
}

type StatusResponse struct {
	Capacity  int          `json:"capacity"`
	Occupied  int          `json:"occupied"`
	Available int          `json:"available"`
	Spots     []SpotStatus `json:"spots"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
