package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the runtime configuration, assembled from environment
// variables with local-development defaults.
type Config struct {
	HTTPAddr       string
	JWTSecret      string
	AllowedOrigins []string

	// DBDriver selects the storage adapter: "postgres" or "sqlite".
	DBDriver    string
	PostgresDSN string
	SQLitePath  string
}

// Load reads configuration from the environment.
func Load() Config {
	cfg := Config{
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		JWTSecret:      getenv("JWT_SECRET", "dev-secret"),
		AllowedOrigins: strings.Split(getenv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		DBDriver:       getenv("DB_DRIVER", "postgres"),
		SQLitePath:     getenv("SQLITE_PATH", "./data/pocketfin.db"),
	}

	cfg.PostgresDSN = os.Getenv("DB_CONN_STR")
	if cfg.PostgresDSN == "" {
		// Build the DSN from individual vars (Docker friendly)
		cfg.PostgresDSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			getenv("DB_HOST", "localhost"),
			getenv("DB_PORT", "5432"),
			getenv("DB_USER", "postgres"),
			getenv("DB_PASSWORD", "postgres"),
			getenv("DB_NAME", "pocketfin"),
		)
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
