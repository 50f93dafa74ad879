package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Shift        ShiftConfig
	Snapshot     SnapshotConfig
	OAuth2Google OAuth2GoogleConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// ShiftConfig holds the shift lifecycle policy knobs.
type ShiftConfig struct {
	// MachineStaleAfter is how long an open session keeps a machine busy
	// before it is considered abandoned and the machine is released.
	MachineStaleAfter time.Duration
	// OvertimeGraceMinutes is added on top of a position's max shift
	// duration before the overtime watcher raises an alert.
	OvertimeGraceMinutes int
	// OvertimeCheckInterval is the watcher polling interval.
	OvertimeCheckInterval time.Duration
	// MaxCorrectionMinutes caps administrator-entered durations.
	// 0 disables the cap.
	MaxCorrectionMinutes int
	// ClockSyncInterval is how often the process clock is realigned
	// with the database clock.
	ClockSyncInterval time.Duration
}

// SnapshotConfig holds the local durable snapshot configuration.
type SnapshotConfig struct {
	Path string
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "crewclock"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	jwtRefreshExpiration := getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h")
	jwtAccessExpiration := getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h")

	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: jwtRefreshExpiration,
		AccessExpiration:  jwtAccessExpiration,
	}

	// Shift policy configuration
	machineStaleAfter, err := time.ParseDuration(getEnv("MACHINE_STALE_AFTER", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid MACHINE_STALE_AFTER: %w", err)
	}

	overtimeGrace, err := strconv.Atoi(getEnv("OVERTIME_GRACE_MINUTES", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid OVERTIME_GRACE_MINUTES: %w", err)
	}

	overtimeInterval, err := time.ParseDuration(getEnv("OVERTIME_CHECK_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid OVERTIME_CHECK_INTERVAL: %w", err)
	}

	maxCorrection, err := strconv.Atoi(getEnv("MAX_CORRECTION_MINUTES", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_CORRECTION_MINUTES: %w", err)
	}

	clockSyncInterval, err := time.ParseDuration(getEnv("CLOCK_SYNC_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLOCK_SYNC_INTERVAL: %w", err)
	}

	config.Shift = ShiftConfig{
		MachineStaleAfter:     machineStaleAfter,
		OvertimeGraceMinutes:  overtimeGrace,
		OvertimeCheckInterval: overtimeInterval,
		MaxCorrectionMinutes:  maxCorrection,
		ClockSyncInterval:     clockSyncInterval,
	}

	// Snapshot configuration
	config.Snapshot = SnapshotConfig{
		Path: getEnv("SNAPSHOT_PATH", "crewclock-snapshot.db"),
	}

	// OAuth2 Google Configuration
	GoogleClientID := getEnv("CLIENT_ID", "")
	GoogleClientSecret := getEnv("CLIENT_SECRET", "")
	GoogleRedirectURL := getEnv("REDIRECT_URL", "")
	GoogleScopes := getEnvSlice("SCOPES")
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     GoogleClientID,
		ClientSecret: GoogleClientSecret,
		RedirectURL:  GoogleRedirectURL,
		Scopes:       GoogleScopes,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Shift.MachineStaleAfter <= 0 {
		return fmt.Errorf("MACHINE_STALE_AFTER must be positive")
	}
	if c.Shift.OvertimeGraceMinutes < 0 {
		return fmt.Errorf("OVERTIME_GRACE_MINUTES must not be negative")
	}
	if c.Shift.MaxCorrectionMinutes < 0 {
		return fmt.Errorf("MAX_CORRECTION_MINUTES must not be negative")
	}
	if c.Shift.OvertimeCheckInterval <= 0 {
		return fmt.Errorf("OVERTIME_CHECK_INTERVAL must be positive")
	}
	if c.Shift.ClockSyncInterval <= 0 {
		return fmt.Errorf("CLOCK_SYNC_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string = strings.Split(value, ",")
	return result
}
