// Package config loads the taxlot settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/etnz/taxlot"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Report   ReportConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Addr string
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// ReportConfig holds the inputs of the matching engine besides trades.
type ReportConfig struct {
	RatesPath    string
	HomeCurrency string
	// Aliases maps legacy tickers to current ones.
	Aliases map[string]string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Addr: getEnv("TAXLOT_ADDR", "localhost:5001"),
		},
		Database: DatabaseConfig{
			Path: getEnv("TAXLOT_DB", "taxlot.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("TAXLOT_CORS_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Report: ReportConfig{
			RatesPath:    getEnv("TAXLOT_RATES", "kursy.csv"),
			HomeCurrency: strings.ToUpper(getEnv("TAXLOT_HOME_CURRENCY", taxlot.DefaultHomeCurrency)),
			Aliases:      make(map[string]string),
		},
	}

	if err := taxlot.ValidateCurrency(config.Report.HomeCurrency); err != nil {
		return nil, fmt.Errorf("TAXLOT_HOME_CURRENCY: %w", err)
	}

	for k, v := range taxlot.DefaultAliases {
		config.Report.Aliases[k] = v
	}
	extra, err := taxlot.ParseAliases(os.Getenv("TAXLOT_ALIASES"))
	if err != nil {
		return nil, fmt.Errorf("TAXLOT_ALIASES: %w", err)
	}
	for k, v := range extra {
		config.Report.Aliases[k] = v
	}

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var list []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
