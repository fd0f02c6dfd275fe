package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// CoinGecko API configuration
	CoinGecko CoinGeckoConfig

	// Price refresh configuration
	Refresh RefreshConfig

	// Persistence backend selection
	Storage StorageConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Search result cache configuration
	Cache CacheConfig

	// API server configuration
	API APIConfig

	// Display currency configuration
	Currency CurrencyConfig

	// Logging configuration
	Log LogConfig
}

// CoinGeckoConfig holds price API connection settings
type CoinGeckoConfig struct {
	BaseURL           string        `envconfig:"COINGECKO_BASE_URL" default:"https://api.coingecko.com/api/v3"`
	APIKey            string        `envconfig:"COINGECKO_API_KEY" default:""`
	RequestTimeout    time.Duration `envconfig:"COINGECKO_REQUEST_TIMEOUT" default:"10s"`
	RequestsPerMinute int           `envconfig:"COINGECKO_REQUESTS_PER_MINUTE" default:"30"`
	MaxIDsPerRequest  int           `envconfig:"COINGECKO_MAX_IDS_PER_REQUEST" default:"100"`
	VsCurrency        string        `envconfig:"COINGECKO_VS_CURRENCY" default:"usd"`
}

// RefreshConfig holds price refresh scheduler settings
type RefreshConfig struct {
	Interval    time.Duration `envconfig:"REFRESH_INTERVAL" default:"24h"`
	Workers     int           `envconfig:"REFRESH_WORKERS" default:"4"`
	MetricsPort int           `envconfig:"REFRESH_METRICS_PORT" default:"8080"`
}

// StorageConfig selects where the portfolio is persisted
type StorageConfig struct {
	// Backend is one of memory, file, postgres, redis
	Backend string `envconfig:"STORAGE_BACKEND" default:"file"`
	Dir     string `envconfig:"STORAGE_DIR" default:"./data"`
	// KeyPrefix namespaces the redis keys
	KeyPrefix string `envconfig:"STORAGE_KEY_PREFIX" default:"coin-tracker:"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"tracker"`
	Password        string        `envconfig:"DB_PASSWORD" default:"tracker"`
	Name            string        `envconfig:"DB_NAME" default:"coin_tracker"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// CacheConfig holds search cache settings
type CacheConfig struct {
	// Driver is redis or memory; redis falls back to memory when unreachable
	Driver          string        `envconfig:"CACHE_DRIVER" default:"memory"`
	SearchTTL       time.Duration `envconfig:"CACHE_SEARCH_TTL" default:"10m"`
	CleanupInterval time.Duration `envconfig:"CACHE_CLEANUP_INTERVAL" default:"30m"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"50"`
}

// CurrencyConfig holds the static conversion used for the secondary display currency
type CurrencyConfig struct {
	USDToEURRate string `envconfig:"USD_TO_EUR_RATE" default:"0.92"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// Load loads configuration from an optional .env file and environment variables
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory", "file", "postgres", "redis":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", c.Refresh.Interval)
	}
	if c.CoinGecko.MaxIDsPerRequest <= 0 {
		return fmt.Errorf("max ids per request must be positive, got %d", c.CoinGecko.MaxIDsPerRequest)
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Addr returns the Redis host:port address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
