// Package config provides application configuration loaded from environment variables.
package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server Server
	Store  Store
	Auth   Auth
	Mail   Mail
	App    App
}

// Server holds HTTP server settings.
type Server struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// Store selects the document store backend.
type Store struct {
	Driver     string // "file" or "sqlite"
	DataDir    string
	SQLitePath string
}

// Auth holds token issuance settings.
type Auth struct {
	JWTSecret        string
	AdminRegisterKey string
}

// Mail holds email delivery settings. Email stays disabled until both
// the region and from address are set.
type Mail struct {
	Enabled   bool
	SESRegion string
	From      string
}

// App holds application-level settings.
type App struct {
	Name      string
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	region := getEnv("SES_REGION", "")
	from := getEnv("MAIL_FROM", "")
	return &Config{
		Server: Server{
			Port:         getEnv("PORT", "3000"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Store: Store{
			Driver:     getEnv("STORE_DRIVER", "file"),
			DataDir:    getEnv("DATA_DIR", "data"),
			SQLitePath: getEnv("SQLITE_PATH", "data/marketplace.db"),
		},
		Auth: Auth{
			JWTSecret:        getEnv("JWT_SECRET", ""),
			AdminRegisterKey: getEnv("ADMIN_REGISTRATION_KEY", ""),
		},
		Mail: Mail{
			Enabled:   getEnvBool("MAIL_ENABLED", false) && region != "" && from != "",
			SESRegion: region,
			From:      from,
		},
		App: App{
			Name:      getEnv("APP_NAME", "eersi.tn"),
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "console"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
