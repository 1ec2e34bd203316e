package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	Env                  string
	DBDriver             string // postgres | sqlite
	PostgresConnStr      string
	SQLitePath           string
	MongoURI             string
	MongoDatabase        string
	MetricsPort          string
	RedisAddr            string
	PollRateLimit        int
	NotificationPageSize int
	NotificationStore    string // sql | memory
	SeedUsers            bool
	LogLevel             string
}

// Load reads .env (if present) and then the process environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                 getEnv("PORT", "4000"),
		Env:                  getEnv("ENV", "development"),
		DBDriver:             getEnv("DB_DRIVER", "postgres"),
		PostgresConnStr:      getEnv("POSTGRES_CONN_STR", ""),
		SQLitePath:           getEnv("SQLITE_PATH", "./data.sqlite"),
		MongoURI:             getEnv("MONGO_URI", ""),
		MongoDatabase:        getEnv("MONGO_DATABASE", "insyd"),
		MetricsPort:          getEnv("METRICS_PORT", "9090"),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		PollRateLimit:        getEnvInt("POLL_RATE_LIMIT", 120),
		NotificationPageSize: getEnvInt("NOTIFICATION_PAGE_SIZE", 50),
		NotificationStore:    getEnv("NOTIFICATION_STORE", "sql"),
		SeedUsers:            getEnvBool("SEED_USERS", true),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}
}

// IsDevelopment reports whether ENV selects the development environment
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

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
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Invalid boolean for %s=%q, using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}
