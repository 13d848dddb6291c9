package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// development fallback only
	defaultJWTSecret = "default_super_secret_key"
)

type DatabaseConfig struct {
	Driver   string // postgres or sqlite
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	URL      string // DATABASE_URL wins over the individual fields
}

// DSN builds the connection string for the configured driver
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == DriverSQLite {
		return d.Name + "?_foreign_keys=on"
	}
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

type AuthConfig struct {
	JWTSecret []byte
	TokenTTL  time.Duration
}

type Config struct {
	Env         string
	Port        string
	WebPort     string
	APIURL      string
	UploadDir   string
	CORSOrigins []string
	Database    DatabaseConfig
	Auth        AuthConfig
}

// IsProduction controls Secure cookies and the gin release mode
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads configs/.env (if present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}
	return FromEnv()
}

// FromEnv assembles the configuration from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:         getEnv("APP_ENV", EnvDevelopment),
		Port:        getEnv("PORT", "8080"),
		WebPort:     getEnv("WEB_PORT", "3000"),
		APIURL:      strings.TrimRight(getEnv("API_URL", "http://localhost:8080"), "/"),
		UploadDir:   getEnv("UPLOAD_DIR", "./uploads/invoices"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", DriverPostgres),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			URL:      os.Getenv("DATABASE_URL"),
		},
		Auth: AuthConfig{
			TokenTTL: time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24*7)) * time.Hour,
		},
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if cfg.IsProduction() {
			return Config{}, errors.New("JWT_SECRET environment variable is required in production mode")
		}
		secret = defaultJWTSecret
	}
	cfg.Auth.JWTSecret = []byte(secret)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Printf("invalid integer for %s: %s", key, v)
			return fallback
		}
		return n
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
