// Package config loads application configuration from command-line flags,
// environment variables and a .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Data     DataConfig
	Server   ServerConfig
	Store    StoreConfig
	Exchange ExchangeConfig
	Media    MediaConfig
	Auth     AuthConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	// Locale controls digit grouping of displayed THB prices.
	Locale string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds on-disk locations.
type DataConfig struct {
	BasePath string // Root for the database, search index and images (default: ~/Hitori/data)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	PublicURL      string // Prefix for stored image URLs; empty means relative URLs
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend       string // badger, sqlite or mongo (default: badger)
	MongoURI      string
	MongoDatabase string
}

// ExchangeConfig configures the JPY to THB rate lookup.
type ExchangeConfig struct {
	BaseURL  string
	TTL      time.Duration
	Timeout  time.Duration
	Fallback float64
}

// MediaConfig configures image compression.
type MediaConfig struct {
	MaxDimension     int   // Longest edge in pixels (default: 720)
	MaxBytes         int64 // Target encoded size (default: 250 KiB)
	EditMaxDimension int   // Longest edge for photos added while editing (default: 1080)
	EditMaxBytes     int64 // Target encoded size while editing (default: 512 KiB)
	MaxUpload        int64 // Largest accepted multipart body (default: 32 MiB)
}

// AuthConfig holds the PIN gate configuration.
type AuthConfig struct {
	AdminPIN          string
	TokenKey          []byte // Set by auth.LoadOrGenerateKey at startup
	EditTokenDuration time.Duration
	AttemptsPerMinute int
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("hitori", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for database, index and images")
	port := fs.String("port", "", "Server port (default: 8080)")
	publicURL := fs.String("public-url", "", "Public base URL used for image links")
	backend := fs.String("store", "", "Store backend: badger, sqlite or mongo (default: badger)")
	mongoURI := fs.String("mongo-uri", "", "MongoDB connection string")
	exchangeURL := fs.String("exchange-url", "", "Exchange rate API base URL")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env is fine; godotenv never overrides variables already set.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			Locale:      getConfigValue("", "DISPLAY_LOCALE", "en"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*port, "SERVER_PORT", "8080"),
			PublicURL:      strings.TrimRight(getConfigValue(*publicURL, "PUBLIC_URL", ""), "/"),
			AllowedOrigins: splitList(getConfigValue("", "CORS_ALLOWED_ORIGINS", "*")),
		},
		Store: StoreConfig{
			Backend:       strings.ToLower(getConfigValue(*backend, "STORE_BACKEND", BackendBadger)),
			MongoURI:      getConfigValue(*mongoURI, "MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase: getConfigValue("", "MONGO_DATABASE", "hitori"),
		},
		Exchange: ExchangeConfig{
			BaseURL:  strings.TrimRight(getConfigValue(*exchangeURL, "EXCHANGE_API_URL", "https://api.frankfurter.app"), "/"),
			Fallback: getFloatConfigValue("EXCHANGE_FALLBACK_RATE", 0.20),
		},
		Media: MediaConfig{
			MaxDimension:     getIntConfigValue("IMAGE_MAX_DIMENSION", 720),
			MaxBytes:         int64(getIntConfigValue("IMAGE_MAX_BYTES", 250*1024)),
			EditMaxDimension: getIntConfigValue("IMAGE_EDIT_MAX_DIMENSION", 1080),
			EditMaxBytes:     int64(getIntConfigValue("IMAGE_EDIT_MAX_BYTES", 512*1024)),
			MaxUpload:        int64(getIntConfigValue("UPLOAD_MAX_BYTES", 32<<20)),
		},
		Auth: AuthConfig{
			AdminPIN:          getConfigValue("", "ADMIN_PIN", ""),
			AttemptsPerMinute: getIntConfigValue("PIN_ATTEMPTS_PER_MINUTE", 5),
		},
	}

	durations := []struct {
		dst    *time.Duration
		envKey string
		def    string
	}{
		{&cfg.Server.ReadTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT", "60s"},
		{&cfg.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Exchange.TTL, "EXCHANGE_CACHE_TTL", "1h"},
		{&cfg.Exchange.Timeout, "EXCHANGE_TIMEOUT", "5s"},
		{&cfg.Auth.EditTokenDuration, "EDIT_TOKEN_DURATION", "30m"},
	}
	for _, d := range durations {
		raw := getConfigValue("", d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	switch c.Store.Backend {
	case BackendBadger, BackendSQLite:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo backend")
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be badger, sqlite, or mongo)", c.Store.Backend)
	}

	if c.Exchange.Fallback <= 0 {
		return fmt.Errorf("exchange fallback rate must be positive, got %v", c.Exchange.Fallback)
	}

	if c.Media.MaxDimension <= 0 || c.Media.MaxBytes <= 0 ||
		c.Media.EditMaxDimension <= 0 || c.Media.EditMaxBytes <= 0 {
		return errors.New("image limits must be positive")
	}

	if c.App.Environment == "production" && c.Auth.AdminPIN == "" {
		return errors.New("ADMIN_PIN is required in production")
	}

	return nil
}

// DatabasePath returns the path of the embedded database for the configured backend.
func (c *Config) DatabasePath() string {
	if c.Store.Backend == BackendSQLite {
		return filepath.Join(c.Data.BasePath, "hitori.db")
	}
	return filepath.Join(c.Data.BasePath, "db")
}

// SearchIndexPath returns the bleve index directory.
func (c *Config) SearchIndexPath() string {
	return filepath.Join(c.Data.BasePath, "search")
}

// ImagesPath returns the blob directory for uploaded images.
func (c *Config) ImagesPath() string {
	return filepath.Join(c.Data.BasePath, "images")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	defaultPath := ""
	if c.Data.BasePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		defaultPath = filepath.Join(homeDir, "Hitori", "data")
	}

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from the environment, or the default when unset or malformed.
func getIntConfigValue(envKey string, defaultValue int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(envKey)))
	if err != nil {
		return defaultValue
	}
	return v
}

// getFloatConfigValue returns a float from the environment, or the default when unset or malformed.
func getFloatConfigValue(envKey string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(envKey)), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
