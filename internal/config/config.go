package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"sorteo/internal/models"
	"sorteo/internal/store"
)

// Storage backend selectors.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type Config struct {
	Port         int
	ReservasPath string
	TotalNumbers int
	CacheTTL     time.Duration
	Storage      string
	DB           store.PGConfig
}

// Load reads the configuration from the environment, after loading a
// local .env file when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         getEnvAsIntOrDefault("PORT", 8080),
		ReservasPath: getEnvOrDefault("RESERVAS_PATH", "reservas.json"),
		TotalNumbers: getEnvAsIntOrDefault("TOTAL_NUMBERS", models.TotalNumbers),
		CacheTTL:     time.Duration(getEnvAsIntOrDefault("CACHE_TTL_SECONDS", 30)) * time.Second,
		Storage:      getEnvOrDefault("STORAGE", StorageFile),
		DB: store.PGConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvAsIntOrDefault("DB_PORT", 5432),
			UserName: getEnvOrDefault("DB_USERNAME", "sorteo"),
			Password: getEnvOrDefault("DB_PASSWORD", "password"),
			DBName:   getEnvOrDefault("DB_NAME", "sorteo"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Printf("Environment variable %s is not set, using default value", key)
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
