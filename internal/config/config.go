package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Upstream UpstreamConfig
	Archive  ArchiveConfig
	Cache    CacheConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"5000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	StaticDir       string        `envconfig:"STATIC_DIR" default:"./static"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"donutsmp-market-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// UpstreamConfig holds DonutSMP API settings.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"UPSTREAM_BASE_URL" default:"https://api.donutsmp.net/v1"`
	Timeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"15s"`
}

// ArchiveConfig holds market history archive settings.
type ArchiveConfig struct {
	Backend string `envconfig:"ARCHIVE_BACKEND" default:"file"` // file, sqlite, or mysql
	Name    string `envconfig:"ARCHIVE_NAME" default:"market"`

	// File backend
	Path string `envconfig:"ARCHIVE_PATH" default:"./market_history.json"`

	// SQLite backend
	SQLitePath string `envconfig:"ARCHIVE_SQLITE_PATH" default:"./data/market_archive.db"`

	// MySQL backend
	MySQLHost     string `envconfig:"ARCHIVE_DB_HOST" default:"localhost"`
	MySQLPort     int    `envconfig:"ARCHIVE_DB_PORT" default:"3306"`
	MySQLName     string `envconfig:"ARCHIVE_DB_NAME" default:"donutmarket"`
	MySQLUser     string `envconfig:"ARCHIVE_DB_USER" default:"root"`
	MySQLPassword string `envconfig:"ARCHIVE_DB_PASS" default:""`

	// Compaction bounds applied on every archive write
	MaxRecords    int `envconfig:"ARCHIVE_MAX_RECORDS" default:"150000"`
	RetentionDays int `envconfig:"ARCHIVE_RETENTION_DAYS" default:"14"`
}

// CacheConfig holds upstream stats cache settings.
type CacheConfig struct {
	Type     string        `envconfig:"CACHE_TYPE" default:"memory"` // memory, redis, or off
	StatsTTL time.Duration `envconfig:"STATS_CACHE_TTL" default:"30s"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MySQLDSN returns the MySQL data source name for the archive backend.
func (a *ArchiveConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		a.MySQLUser, a.MySQLPassword, a.MySQLHost, a.MySQLPort, a.MySQLName)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
