package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/andresmejia3/bbtface/internal/types"
	"github.com/joho/godotenv"
)

// Config holds the settings shared by all commands.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Match    MatchConfig
}

type DatabaseConfig struct {
	URL      string // Full connection string, wins over the POSTGRES_* parts
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int // Pool size (default 10)
}

type ServerConfig struct {
	Host string
	Port int // defaults to 3000
}

type MatchConfig struct {
	Dim       int     // Descriptor length (default 128)
	Threshold float64 // Default match threshold (default 0.6)
	Workers   int     // Goroutines used to rank large galleries (default 4)
}

// ConnString returns the PostgreSQL connection string.
// DATABASE_URL is used as-is; otherwise it is assembled from the POSTGRES_* variables,
// falling back to a local default.
func (c *DatabaseConfig) ConnString() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Host == "" {
		return "postgres://localhost:5432/faces"
	}
	port := c.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.User, c.Password, c.Host, port, c.Name)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat is envInt for positive floats.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// Load reads the configuration from the environment.
// A .env file in the working directory is optional.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     os.Getenv("POSTGRES_PORT"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     os.Getenv("POSTGRES_DB"),
			MaxConns: envInt("DATABASE_MAX_CONNS", 10),
		},
		Server: ServerConfig{
			Host: os.Getenv("HOST"),
			Port: envInt("PORT", 3000),
		},
		Match: MatchConfig{
			Dim:       envInt("FACE_DIM", types.DefaultDim),
			Threshold: envFloat("MATCH_THRESHOLD", 0.6),
			Workers:   envInt("MATCH_WORKERS", 4),
		},
	}
}
