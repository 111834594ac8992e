// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port   string
	AppEnv string

	// Google Drive
	DriveFolderID   string // default destination folder for uploads
	CredentialsFile string // service-account JSON key
	DriveAPIBaseURL string // empty means https://www.googleapis.com

	MaxUploadBytes int64

	// JWTSecret enables bearer auth on /drive routes when non-empty.
	JWTSecret      string
	AllowedOrigins []string
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "development"),

		DriveFolderID:   getEnv("DRIVE_FOLDER_ID", ""),
		CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", "google_api.json"),
		DriveAPIBaseURL: getEnv("DRIVE_API_BASE_URL", ""),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 50<<20),

		JWTSecret:      getEnv("API_JWT_SECRET", ""),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

// Validate reports missing settings the service cannot start without.
// Production additionally requires API auth and an explicit CORS allow-list.
func (c *Config) Validate() error {
	var errs []error
	if c.DriveFolderID == "" {
		errs = append(errs, errors.New("DRIVE_FOLDER_ID is required"))
	}
	if c.CredentialsFile == "" {
		errs = append(errs, errors.New("GOOGLE_APPLICATION_CREDENTIALS is required"))
	}
	if c.IsProduction() {
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("API_JWT_SECRET is required in production"))
		}
		for _, o := range c.AllowedOrigins {
			if o == "*" {
				errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must not be * in production"))
				break
			}
		}
	}
	return errors.Join(errs...)
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
