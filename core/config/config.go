package config

import (
	"time"

	"venueplanner/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration, loaded from environment variables
type Config struct {
	ServerPort string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	// External AI recommendation service
	AIServiceURL     string
	AIServiceAPIKey  string
	AIServiceTimeout time.Duration
	AIServiceRetries int

	// Background sweeps
	SweepInterval           time.Duration
	RecurringInterval       time.Duration
	WorkerConcurrency       int
	ForceFinalizeOnDeadline bool
}

var cfg *Config

// Load reads configuration from .env / environment. Safe to call once at startup.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file found, using environment variables")
	}

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "7070")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "venueplanner")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("AI_SERVICE_URL", "http://localhost:8090")
	viper.SetDefault("AI_SERVICE_TIMEOUT", "3m")
	viper.SetDefault("AI_SERVICE_RETRIES", 2)
	viper.SetDefault("SWEEP_INTERVAL", "1m")
	viper.SetDefault("RECURRING_INTERVAL", "15m")
	viper.SetDefault("WORKER_CONCURRENCY", 10)
	viper.SetDefault("FORCE_FINALIZE_ON_DEADLINE", true)

	cfg = &Config{
		ServerPort: viper.GetString("SERVER_PORT"),

		DBHost:     viper.GetString("DB_HOST"),
		DBPort:     viper.GetInt("DB_PORT"),
		DBUser:     viper.GetString("DB_USER"),
		DBPassword: viper.GetString("DB_PASSWORD"),
		DBName:     viper.GetString("DB_NAME"),
		DBSSLMode:  viper.GetString("DB_SSL_MODE"),

		RedisAddr:     viper.GetString("REDIS_ADDR"),
		RedisPassword: viper.GetString("REDIS_PASSWORD"),
		RedisDB:       viper.GetInt("REDIS_DB"),

		JWTSecret: viper.GetString("JWT_SECRET"),

		AIServiceURL:     viper.GetString("AI_SERVICE_URL"),
		AIServiceAPIKey:  viper.GetString("AI_SERVICE_API_KEY"),
		AIServiceTimeout: viper.GetDuration("AI_SERVICE_TIMEOUT"),
		AIServiceRetries: viper.GetInt("AI_SERVICE_RETRIES"),

		SweepInterval:           viper.GetDuration("SWEEP_INTERVAL"),
		RecurringInterval:       viper.GetDuration("RECURRING_INTERVAL"),
		WorkerConcurrency:       viper.GetInt("WORKER_CONCURRENCY"),
		ForceFinalizeOnDeadline: viper.GetBool("FORCE_FINALIZE_ON_DEADLINE"),
	}

	return cfg
}

// Get returns the loaded configuration
func Get() *Config {
	if cfg == nil {
		return Load()
	}
	return cfg
}
