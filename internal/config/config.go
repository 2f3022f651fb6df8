package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all configuration for the flight board service
type Config struct {
	AppEnv string
	Port   string

	// Database
	DBDriver   string
	DBDSN      string
	PGHost     string
	PGPort     string
	PGUser     string
	PGDB       string
	PGPassword string

	// Cache
	CacheBackend  string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	BoardCacheTTL time.Duration

	// Engine
	SweepInterval    time.Duration
	SweepCooldown    time.Duration
	WriteTimeout     time.Duration
	SendTimeout      time.Duration
	QueueSize        int
	BroadcastUpdates bool

	// HTTP
	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

// Load reads configuration from a .env file (if present) and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	interval := getEnvAsDuration("FLIGHTBOARD_SWEEP_INTERVAL", 30*time.Second)

	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBDSN:      getEnv("DB_DSN", "flights.db"),
		PGHost:     getEnv("PG_HOST", "localhost"),
		PGPort:     getEnv("PG_PORT", "5432"),
		PGUser:     getEnv("PG_USER", ""),
		PGDB:       getEnv("PG_DB", "flightboard"),
		PGPassword: getEnv("PG_PASSWORD", ""),

		CacheBackend:  strings.ToLower(getEnv("CACHE_BACKEND", CacheMemory)),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		BoardCacheTTL: getEnvAsDuration("FLIGHTBOARD_BOARD_CACHE_TTL", interval),

		SweepInterval:    interval,
		SweepCooldown:    getEnvAsDuration("FLIGHTBOARD_SWEEP_COOLDOWN", 10*interval),
		WriteTimeout:     getEnvAsDuration("FLIGHTBOARD_WRITE_TIMEOUT", 5*time.Second),
		SendTimeout:      getEnvAsDuration("FLIGHTBOARD_SEND_TIMEOUT", 2*time.Second),
		QueueSize:        getEnvAsInt("FLIGHTBOARD_QUEUE_SIZE", 256),
		BroadcastUpdates: getEnvAsBool("FLIGHTBOARD_BROADCAST_UPDATES", true),

		JWTSecret:      getEnv("FLIGHTBOARD_JWT_SECRET", ""),
		RateLimitRPS:   getEnvAsFloat("FLIGHTBOARD_RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("FLIGHTBOARD_RATE_LIMIT_BURST", 10),
		CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.DBDriver != DriverSQLite && c.DBDriver != DriverPostgres {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver))
	}
	if c.CacheBackend != CacheMemory && c.CacheBackend != CacheRedis {
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", CacheMemory, CacheRedis, c.CacheBackend))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, errors.New("FLIGHTBOARD_SWEEP_INTERVAL must be positive"))
	}
	if c.SweepCooldown < c.SweepInterval {
		errs = append(errs, errors.New("FLIGHTBOARD_SWEEP_COOLDOWN must not be shorter than the sweep interval"))
	}
	if c.WriteTimeout <= 0 || c.SendTimeout <= 0 {
		errs = append(errs, errors.New("write and send timeouts must be positive"))
	}
	if c.QueueSize <= 0 {
		errs = append(errs, errors.New("FLIGHTBOARD_QUEUE_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

// PostgresDSN builds the lib/pq style connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDB)
}

// RedisAddr returns host:port for the redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration syntax ("45s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
