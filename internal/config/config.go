package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/glowmart/cjfulfill/pkg/errors"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	CJ          CJConfig
	Pricing     PricingConfig
	API         APIConfig
	LogLevel    string
}

// CJConfig is used to authenticate against and call the CJ Dropshipping API
type CJConfig struct {
	BaseURL      string // e.g. https://developers.cjdropshipping.com/api2.0/v1
	ClientID     string // CJ_CLIENT_ID
	ClientSecret string // CJ_CLIENT_SECRET
	CountryCode  string // default warehouse country filter for product listing
}

// PricingConfig carries the storefront pricing rules the sync layer consumes
type PricingConfig struct {
	MarginMultiplier float64 // display price = supplier base price * multiplier
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type APIConfig struct {
	// AdminKeyHash is the bcrypt hash of the admin API key; generate with cmd/hash-key
	AdminKeyHash string
}

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
	viper.SetDefault("CJ_BASE_URL", "https://developers.cjdropshipping.com/api2.0/v1")
	viper.SetDefault("CJ_COUNTRY_CODE", "US")
	viper.SetDefault("PRICE_MARGIN_MULTIPLIER", "1.45")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "cjfulfill"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		CJ: CJConfig{
			BaseURL:      strings.TrimSuffix(strings.TrimSpace(getEnvOrViper("CJ_BASE_URL", "https://developers.cjdropshipping.com/api2.0/v1")), "/"),
			ClientID:     strings.TrimSpace(getEnvOrViper("CJ_CLIENT_ID", "")),
			ClientSecret: strings.TrimSpace(getEnvOrViper("CJ_CLIENT_SECRET", "")),
			CountryCode:  getEnvOrViper("CJ_COUNTRY_CODE", "US"),
		},
		Pricing: PricingConfig{
			MarginMultiplier: viper.GetFloat64("PRICE_MARGIN_MULTIPLIER"),
		},
		API: APIConfig{
			AdminKeyHash: strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	if cfg.Pricing.MarginMultiplier <= 0 {
		cfg.Pricing.MarginMultiplier = 1.45
	}

	// Validate required fields
	if cfg.CJ.ClientID == "" {
		return nil, &errors.ErrConfiguration{Setting: "CJ_CLIENT_ID"}
	}
	if cfg.CJ.ClientSecret == "" {
		return nil, &errors.ErrConfiguration{Setting: "CJ_CLIENT_SECRET"}
	}

	return cfg, nil
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
