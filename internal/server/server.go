package server

import (
	"context"
	"net/http"
	"time"

	"parking-garage/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	httpServer *http.Server
	handler    *Handler
}

func NewServer(port string, handler *Handler) *Server {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(TracingMiddleware)
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/garage", func(r chi.Router) {
		r.Post("/", handler.CreateGarage)
		r.Post("/park", handler.ParkVehicle)
		r.Post("/exit", handler.ExitVehicle)
		r.Get("/status", handler.GetStatus)
		r.Get("/tickets/{id}", handler.GetTicket)
		r.Get("/find/{registration}", handler.FindByRegistration)
	})

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
	}
}

func (s *Server) Start() error {
	logging.Logger().Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Logger().Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
