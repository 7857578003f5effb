package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Strings for identifiers and secrets, ints and
// durations for policy knobs.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	DBMaxConns    int           // connection pool size
	JWTSecret     string        // secret used to verify JWTs
	ChapaBaseURL  string        // payment gateway base URL
	ChapaSecret   string        // payment gateway secret key
	WebhookSecret string        // shared secret for webhook signature checks
	Currency      string        // currency code sent to the gateway
	ReturnURL     string        // browser return URL after checkout
	GracePeriod   time.Duration // how long an unpaid booking holds its room
	SweepInterval time.Duration // expiry sweeper tick
	FeePercent    int           // flat cancellation fee percent
}

// Load reads configuration from environment variables.  Required variables
// are enforced by must() and missing values cause the program to exit with
// a fatal log message; policy knobs fall back to sensible defaults.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		DBMaxConns:    intOr("DB_MAX_CONNS", 25),
		JWTSecret:     must("JWT_SECRET"),
		ChapaBaseURL:  must("CHAPA_BASE_URL"),
		ChapaSecret:   must("CHAPA_SECRET_KEY"),
		WebhookSecret: os.Getenv("CHAPA_WEBHOOK_SECRET"), // empty disables signature checks
		Currency:      getenv("PAYMENT_CURRENCY", "ETB"),
		ReturnURL:     must("PAYMENT_RETURN_URL"),
		GracePeriod:   time.Duration(intOr("BOOKING_GRACE_MIN", 30)) * time.Minute,
		SweepInterval: parseDur(getenv("EXPIRY_SWEEP_INTERVAL", "1m")),
		FeePercent:    intOr("CANCELLATION_FEE_PERCENT", 10),
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

// intOr reads an integer variable, falling back to def when unset or
// malformed.
func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
