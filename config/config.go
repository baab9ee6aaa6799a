package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	Env               string
	RedisURL          string
	MarketplaceAPIURL string
	RequestTimeout    time.Duration
	JWTSecret         string
	CartTTL           time.Duration
}

// Load reads configuration from the .env file and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Port:              getEnv("PORT", "8090"),
		Env:               getEnv("ENV", "development"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		MarketplaceAPIURL: getEnv("MARKETPLACE_API_URL", "http://localhost:8080"),
		RequestTimeout:    getDurationEnv("REQUEST_TIMEOUT", 10*time.Second),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		CartTTL:           getDurationEnv("CART_TTL", time.Hour*24*7),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using default", key)
	}
	return defaultVal
}
