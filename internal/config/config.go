// Package config reads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBPath        string
	JWTSecret     string
	LogLevel      string
	SecureCookies bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Config {
	godotenv.Load()

	return Config{
		Port:          getenv("GONGJUCAL_PORT", "8080"),
		DBPath:        getenv("GONGJUCAL_DB_PATH", "gongjucal.db"),
		JWTSecret:     getenv("GONGJUCAL_JWT_SECRET", ""),
		LogLevel:      getenv("GONGJUCAL_LOG_LEVEL", "info"),
		SecureCookies: os.Getenv("GONGJUCAL_SECURE_COOKIES") == "true",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
