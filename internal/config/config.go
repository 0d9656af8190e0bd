package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when CONFIG_PATH is unset.
const DefaultPath = "config.yaml"

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the process configuration.
type Config struct {
	Port               string        `yaml:"port"`
	StoreDriver        string        `yaml:"storeDriver"`
	MongoURI           string        `yaml:"mongoURI"`
	MongoDatabase      string        `yaml:"mongoDatabase"`
	MongoCollection    string        `yaml:"mongoCollection"`
	PostgresDSN        string        `yaml:"postgresDSN"`
	StoreTimeout       time.Duration `yaml:"storeTimeout"`
	LogLevel           string        `yaml:"logLevel"`
	CORSAllowedOrigins []string      `yaml:"corsAllowedOrigins"`
	RateLimitRPS       float64       `yaml:"rateLimitRPS"`
	RateLimitBurst     int           `yaml:"rateLimitBurst"`
	MaxBodyBytes       int64         `yaml:"maxBodyBytes"`
	EnableHSTS         bool          `yaml:"enableHSTS"`
	LegacyCompat       bool          `yaml:"legacyCompat"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:               "3000",
		StoreDriver:        DriverMongo,
		MongoDatabase:      "bookstore",
		MongoCollection:    "books",
		StoreTimeout:       5 * time.Second,
		LogLevel:           "info",
		CORSAllowedOrigins: []string{"*"},
		RateLimitBurst:     20,
		MaxBodyBytes:       1 << 20,
	}
}

// LoadEnvFiles loads .env and .env.local into the environment. Variables
// already set by the runtime are not overridden.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load builds the configuration from defaults, the YAML file at path (a
// missing file is not an error), and environment variables, in that order.
func Load(path string) (Config, error) {
	LoadEnvFiles()

	cfg := Defaults()
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.StoreDriver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		cfg.MongoDatabase = v
	}
	if v := os.Getenv("MONGODB_COLLECTION"); v != "" {
		cfg.MongoCollection = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitCSV(v)
	}
	if v := os.Getenv("STORE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid STORE_TIMEOUT %q: %w", v, err)
		}
		cfg.StoreTimeout = d
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		cfg.RateLimitRPS = n
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
		cfg.RateLimitBurst = n
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: invalid MAX_BODY_BYTES %q: %w", v, err)
		}
		cfg.MaxBodyBytes = n
	}
	if v := os.Getenv("ENABLE_HSTS"); v != "" {
		cfg.EnableHSTS = v == "true"
	}
	if v := os.Getenv("LEGACY_COMPAT"); v != "" {
		cfg.LegacyCompat = v == "true"
	}
	return nil
}

// Validate reports the first missing or inconsistent setting.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: port is required")
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("config: MONGODB_URI is required for the mongo store")
		}
		if c.MongoDatabase == "" || c.MongoCollection == "" {
			return errors.New("config: mongo database and collection are required")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("config: DB_DSN is required for the postgres store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown store driver %q (want mongo, postgres or memory)", c.StoreDriver)
	}
	if c.StoreTimeout < 0 {
		return errors.New("config: storeTimeout must not be negative")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return errors.New("config: rate limit settings must not be negative")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("config: maxBodyBytes must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
