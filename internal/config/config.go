package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabasePath    string // SQLite file holding the master question set
	DatabaseURL     string
	UserStoreDir    string
	MigrationsPath  string
	SeedPath        string
	SessionDuration time.Duration
	TokenSecret     string
	RateLimit       int // events per minute per user

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	Debug        bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./questions.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		UserStoreDir:    getEnv("USER_STORE_DIR", "./.user_databases"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		SeedPath:        getEnv("QUESTIONS_SEED_PATH", "./data/questions.json"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 24*time.Hour),
		TokenSecret:     getEnv("TOKEN_SECRET", ""),
		RateLimit:       getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:    getEnv("SES_FROM_EMAIL", ""),
		SESFromName:     getEnv("SES_FROM_NAME", "Quiz Master"),
		Debug:           getEnv("DEBUG", "") == "true",
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
