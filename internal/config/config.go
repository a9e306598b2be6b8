package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            string
	HourlyRate      int64
	CompactSpots    int
	RegularSpots    int
	LargeSpots      int
	OTelServiceName string
	OTelEndpoint    string
	Development     bool
}

func Load() *Config {
	return &Config{
		Port:            envOr("GARAGE_PORT", "8080"),
		HourlyRate:      int64(envOrInt("GARAGE_HOURLY_RATE", 50)),
		CompactSpots:    envOrInt("GARAGE_COMPACT_SPOTS", 10),
		RegularSpots:    envOrInt("GARAGE_REGULAR_SPOTS", 20),
		LargeSpots:      envOrInt("GARAGE_LARGE_SPOTS", 5),
		OTelServiceName: envOr("OTEL_SERVICE_NAME", "parking-garage-service"),
		OTelEndpoint:    envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		Development:     envOrBool("GARAGE_DEV_MODE", false),
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envOrBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
