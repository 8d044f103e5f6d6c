package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL  string
	AccessToken string

	DBPath string

	HTTPTimeout time.Duration
	// Upper bound on outgoing API requests per second. The bootstrap
	// fetch loop issues one request per referenced training, so an
	// unthrottled run can hammer the server after a long offline period.
	RequestsPerSecond float64

	MetricsAddr string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:        getEnv("API_BASE_URL", "https://fitimprove.onrender.com/api"),
		AccessToken:       getEnv("ACCESS_TOKEN", ""),
		DBPath:            getEnv("DB_PATH", "fitimprove.db"),
		HTTPTimeout:       time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		RequestsPerSecond: getEnvFloat("REQUESTS_PER_SECOND", 10),
		MetricsAddr:       getEnv("METRICS_ADDR", ""),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
