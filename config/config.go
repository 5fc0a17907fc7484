// config/config.go - Environment configuration (.env + process environment)
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	SQLitePath  string

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins string

	RateLimitEnabled     bool
	RateLimitMaxRequests int
	RateLimitWindow      time.Duration
	AuthRateLimitMax     int
	AuthRateLimitWindow  time.Duration

	TopPerformersLimit int

	RedisURL     string
	RedisChannel string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "taskhub")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "taskhub.db")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("AUTH_RATE_LIMIT_MAX", 5)
	v.SetDefault("AUTH_RATE_LIMIT_WINDOW", "5m")
	v.SetDefault("TOP_PERFORMERS_LIMIT", 5)
	v.SetDefault("REDIS_CHANNEL", "taskhub:comments")
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not found, using system environment variables")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// FromViper builds a Config from v. Tests set keys on v directly.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	cfg := &Config{
		Port:                 v.GetString("PORT"),
		AppEnv:               v.GetString("APP_ENV"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		DBDriver:             strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:          v.GetString("DATABASE_URL"),
		DBHost:               v.GetString("DB_HOST"),
		DBPort:               v.GetString("DB_PORT"),
		DBUser:               v.GetString("DB_USER"),
		DBPassword:           v.GetString("DB_PASSWORD"),
		DBName:               v.GetString("DB_NAME"),
		DBSSLMode:            v.GetString("DB_SSLMODE"),
		SQLitePath:           v.GetString("SQLITE_PATH"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		JWTTTL:               v.GetDuration("JWT_TTL"),
		CORSOrigins:          v.GetString("CORS_ORIGINS"),
		RateLimitEnabled:     v.GetBool("RATE_LIMIT_ENABLED"),
		RateLimitMaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		RateLimitWindow:      v.GetDuration("RATE_LIMIT_WINDOW"),
		AuthRateLimitMax:     v.GetInt("AUTH_RATE_LIMIT_MAX"),
		AuthRateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
		TopPerformersLimit:   v.GetInt("TOP_PERFORMERS_LIMIT"),
		RedisURL:             v.GetString("REDIS_URL"),
		RedisChannel:         v.GetString("REDIS_CHANNEL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable must be set")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.RedisURL != "" {
		if _, err := redis.ParseURL(c.RedisURL); err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
	}
	return nil
}

// RedisOptions returns nil when no REDIS_URL is configured.
func (c *Config) RedisOptions() *redis.Options {
	if c.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil
	}
	return opts
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// PostgresDSN prefers DATABASE_URL and falls back to the DB_* parts.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// ConfigureLogging applies LOG_LEVEL and picks the JSON formatter in production.
func (c *Config) ConfigureLogging() {
	if lvl, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.WithField("level", c.LogLevel).Warn("unknown LOG_LEVEL, keeping info")
		log.SetLevel(log.InfoLevel)
	}
	if c.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
