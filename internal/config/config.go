package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	PostgresDSN string
	// BackendFlavor selects the persistence adapter: "bear" (MongoDB) or
	// "tiger" (PostgreSQL). Tiger additionally supports summary workflows.
	BackendFlavor string
	SkipAuth      bool
	Environment   string
	AppId         string

	SummaryPollInterval time.Duration
	SummaryTimeout      time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:        getEnv("DB_NAME", "go-dash"),
		PostgresDSN:   getEnv("POSTGRES_DSN", "postgres://localhost:5432/go-dash?sslmode=disable"),
		BackendFlavor: getEnv("BACKEND_FLAVOR", "bear"),
		SkipAuth:      getEnv("SKIP_AUTH", "false") == "true",
		Environment:   getEnv("ENVIRONMENT", "development"),
		AppId:         getEnv("APP_ID", "go-dash"),

		SummaryPollInterval: getDurationEnv("SUMMARY_POLL_INTERVAL", 3*time.Second),
		SummaryTimeout:      getDurationEnv("SUMMARY_TIMEOUT", 5*time.Minute),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using default %s", key, fallback)
	}
	return fallback
}
