package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// Idempotency knobs
	IdempotencyExpiryHours int
	IdempotencyLockTimeout time.Duration
	IdempotencyLockPoll    time.Duration

	// Governance knobs
	MaintenanceWindowStartHour int
	MaintenanceWindowEndHour   int
	PeriodProximityWarnDays    int

	// Scan / repair knobs
	RepairWorkers int
	ScanBatchSize int

	// Rate limiting, e.g. "100-M" for 100 requests per minute
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("IDEMPOTENCY_EXPIRY_HOURS", 24)
	viper.SetDefault("IDEMPOTENCY_LOCK_TIMEOUT", "30s")
	viper.SetDefault("IDEMPOTENCY_LOCK_POLL", "100ms")
	viper.SetDefault("MAINTENANCE_WINDOW_START_HOUR", 0)
	viper.SetDefault("MAINTENANCE_WINDOW_END_HOUR", 0)
	viper.SetDefault("PERIOD_PROXIMITY_WARN_DAYS", 30)
	viper.SetDefault("REPAIR_WORKERS", 8)
	viper.SetDefault("SCAN_BATCH_SIZE", 200)
	viper.SetDefault("RATE_LIMIT", "300-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.IdempotencyExpiryHours = viper.GetInt("IDEMPOTENCY_EXPIRY_HOURS")

	lockTimeout, err := time.ParseDuration(viper.GetString("IDEMPOTENCY_LOCK_TIMEOUT"))
	if err != nil {
		lockTimeout = 30 * time.Second
		log.Printf("Warning: Invalid IDEMPOTENCY_LOCK_TIMEOUT. Defaulting to %s.\n", lockTimeout)
	}
	cfg.IdempotencyLockTimeout = lockTimeout

	lockPoll, err := time.ParseDuration(viper.GetString("IDEMPOTENCY_LOCK_POLL"))
	if err != nil {
		lockPoll = 100 * time.Millisecond
		log.Printf("Warning: Invalid IDEMPOTENCY_LOCK_POLL. Defaulting to %s.\n", lockPoll)
	}
	cfg.IdempotencyLockPoll = lockPoll

	cfg.MaintenanceWindowStartHour = viper.GetInt("MAINTENANCE_WINDOW_START_HOUR")
	cfg.MaintenanceWindowEndHour = viper.GetInt("MAINTENANCE_WINDOW_END_HOUR")
	cfg.PeriodProximityWarnDays = viper.GetInt("PERIOD_PROXIMITY_WARN_DAYS")
	cfg.RepairWorkers = viper.GetInt("REPAIR_WORKERS")
	cfg.ScanBatchSize = viper.GetInt("SCAN_BATCH_SIZE")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
