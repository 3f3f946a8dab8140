package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	// StorageDir is where generated certificate documents are written;
	// PublicBaseURL is the URL prefix they are served under.
	StorageDir    string
	PublicBaseURL string

	// HTTPTimeout bounds outbound fetches (playlists, template images).
	HTTPTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "learning_platform"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		StorageDir:    getEnv("STORAGE_DIR", "./storage"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080/files"),
		HTTPTimeout:   time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %v", key, err)
		return defaultValue
	}
	return intValue
}
