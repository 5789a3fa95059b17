package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Required variables are enforced by must()
// and cause the program to exit when missing; policy tunables fall back
// to the defaults mandated by the ticketing rules (180 minutes between
// showtimes in a room, cancellation closed 2 hours before start).
type Config struct {
	Env          string        // application environment (e.g. "dev", "prod")
	Port         string        // HTTP port to listen on
	DBUser       string        // database username
	DBPass       string        // database password (optional)
	DBHost       string        // database host address
	DBPort       string        // database port number
	DBName       string        // database name
	JWTSecret    string        // secret used to verify access tokens
	ShowtimeGap  time.Duration // minimum separation between showtimes in a room
	CancelWindow time.Duration // how long before start cancellation closes
}

// Load reads a .env file when present, then builds a Config from the
// environment.  Missing required variables are fatal.
func Load() Config {
	// .env is optional; a missing file is expected in production where
	// the environment is provided by the deployment.
	_ = godotenv.Load()

	return Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"),
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		ShowtimeGap:  time.Duration(envInt("SHOWTIME_GAP_MIN", 180)) * time.Minute,
		CancelWindow: time.Duration(envInt("CANCEL_WINDOW_MIN", 120)) * time.Minute,
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envStr returns the value of key or the default when unset.
func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// envInt returns the integer value of key or the default when unset or
// unparsable.
func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

// envBool returns the boolean value of key or the default.
func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

// envDur returns the duration value of key or the default.
func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
