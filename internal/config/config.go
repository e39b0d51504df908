package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Backend     BackendConfig
	Cart        CartConfig
	Redis       RedisConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// BackendConfig points at the asset-management REST API
type BackendConfig struct {
	BaseURL        string
	APIToken       string
	TimeoutSeconds int
}

type CartConfig struct {
	Store             string // memory, redis or postgres
	TTLHours          int
	DefaultPeriodDays int
}

type RedisConfig struct {
	URL       string
	Namespace string
}

const (
	CartStoreMemory   = "memory"
	CartStoreRedis    = "redis"
	CartStorePostgres = "postgres"
)

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CART_STORE", CartStoreMemory)

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeoutSeconds, err := getIntOrDefault("BACKEND_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	ttlHours, err := getIntOrDefault("CART_TTL_HOURS", 0)
	if err != nil {
		return nil, err
	}
	periodDays, err := getIntOrDefault("CART_DEFAULT_PERIOD_DAYS", 7)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "assetcart"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Backend: BackendConfig{
			BaseURL:        getEnvOrViper("BACKEND_API_URL", ""),
			APIToken:       getEnvOrViper("BACKEND_API_TOKEN", ""),
			TimeoutSeconds: timeoutSeconds,
		},
		Cart: CartConfig{
			Store:             strings.ToLower(getEnvOrViper("CART_STORE", CartStoreMemory)),
			TTLHours:          ttlHours,
			DefaultPeriodDays: periodDays,
		},
		Redis: RedisConfig{
			URL:       getEnvOrViper("REDIS_URL", "redis://localhost:6379/0"),
			Namespace: getEnvOrViper("REDIS_NAMESPACE", "assetcart"),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and enumerated values
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_API_URL is required")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT_SECONDS must be positive")
	}
	switch c.Cart.Store {
	case CartStoreMemory, CartStoreRedis, CartStorePostgres:
	default:
		return fmt.Errorf("CART_STORE must be one of memory, redis, postgres (got %q)", c.Cart.Store)
	}
	if c.Cart.DefaultPeriodDays <= 0 {
		return fmt.Errorf("CART_DEFAULT_PERIOD_DAYS must be positive")
	}
	if c.Cart.TTLHours < 0 {
		return fmt.Errorf("CART_TTL_HOURS cannot be negative")
	}
	return nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

// getIntOrDefault returns defaultValue only when key is unset; a malformed value is an error
func getIntOrDefault(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(getEnvOrViper(key, ""))
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got %q)", key, raw)
	}
	return n, nil
}
