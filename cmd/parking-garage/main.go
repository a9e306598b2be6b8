package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-garage/internal/config"
	"parking-garage/internal/logging"
	"parking-garage/internal/parking"
	"parking-garage/internal/server"
)

var (
	mode = flag.String("mode", "server", "Mode to run: cli, server, or both")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	logging.Init(cfg.Development)
	log := logging.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetry, err := parking.NewTelemetryProvider(ctx, parking.TelemetrySettings{
		ServiceName:  cfg.OTelServiceName,
		OTLPEndpoint: cfg.OTelEndpoint,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		runCLI(ctx, cancel, cfg, telemetry, sigChan)
	case "server":
		runServer(ctx, cancel, cfg, telemetry, sigChan)
	case "both":
		runBoth(ctx, cancel, cfg, telemetry, sigChan)
	default:
		log.Fatal().Str("mode", *mode).Msg("invalid mode, must be cli, server, or both")
	}
}

func newServer(cfg *config.Config, telemetry *parking.TelemetryProvider) *server.Server {
	handler := server.NewHandler(telemetry, cfg.OTelServiceName, cfg.HourlyRate)
	return server.NewServer(cfg.Port, handler)
}

func runCLI(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, telemetry *parking.TelemetryProvider, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Logger().Info().Msg("shutting down")
		cancel()
	}()

	shell := parking.NewShell(telemetry, cfg.HourlyRate)
	shell.Run(ctx)

	shutdownTelemetry(telemetry)
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, telemetry *parking.TelemetryProvider, sigChan chan os.Signal) {
	srv := newServer(cfg, telemetry)

	go func() {
		<-sigChan
		logging.Logger().Info().Msg("received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger().Error().Err(err).Msg("server shutdown error")
		}

		cancel()
	}()

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		logging.Logger().Error().Err(err).Msg("server error")
	}

	shutdownTelemetry(telemetry)
}

func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, telemetry *parking.TelemetryProvider, sigChan chan os.Signal) {
	srv := newServer(cfg, telemetry)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		shell := parking.NewShell(telemetry, cfg.HourlyRate)
		shell.Run(ctx)
		cliDone <- true
	}()

	go func() {
		<-sigChan
		logging.Logger().Info().Msg("received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger().Error().Err(err).Msg("server shutdown error")
		}

		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && err != http.ErrServerClosed {
			logging.Logger().Error().Err(err).Msg("server error")
		}
	case <-cliDone:
		logging.Logger().Info().Msg("CLI exited")
	case <-ctx.Done():
		logging.Logger().Info().Msg("context cancelled")
	}

	shutdownTelemetry(telemetry)
}

func shutdownTelemetry(telemetry *parking.TelemetryProvider) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logging.Logger().Error().Err(err).Msg("error shutting down telemetry")
	}
}
