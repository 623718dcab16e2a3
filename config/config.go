package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds the runtime settings read from the environment
type Config struct {
	Env           string
	Port          string
	MongoURI      string
	DBName        string
	JWTSecret     string
	JWTTTL        time.Duration
	QueryTimeout  time.Duration
	ReadRetries   int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from environment variables, applying defaults
func Load() (*Config, error) {
	cfg := &Config{
		Env:           os.Getenv("ENV"),
		Port:          getEnv("PORT", "8080"),
		DBName:        getEnv("DB_NAME", "playerback"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        getDuration("JWT_TTL", time.Hour),
		QueryTimeout:  getDuration("QUERY_TIMEOUT", 10*time.Second),
		ReadRetries:   getInt("READ_RETRIES", 2),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
	}

	// Check both MONGO_URI and MONGODB_URI
	cfg.MongoURI = os.Getenv("MONGO_URI")
	if cfg.MongoURI == "" {
		cfg.MongoURI = os.Getenv("MONGODB_URI")
	}
	if cfg.MongoURI == "" && cfg.IsDevelopment() {
		cfg.MongoURI = "mongodb://localhost:27017"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGO_URI or MONGODB_URI environment variable is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.QueryTimeout <= 0 {
		return errors.New("QUERY_TIMEOUT must be positive")
	}
	if c.ReadRetries < 0 {
		return errors.New("READ_RETRIES must not be negative")
	}
	return nil
}

// IsDevelopment reports whether ENV names a development environment
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
