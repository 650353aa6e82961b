package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName   string
	Port          string
	Environment   string
	MongoURI      string
	DatabaseName  string
	RedisHost     string
	RedisPort     string
	JaegerAddress string
	SecretKey     string
	TokenExpires  time.Duration
	LogFile       string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading configuration from environment")
	}

	expiresStr := os.Getenv("TOKEN_EXPIRES_HOURS")
	expiresHours, err := strconv.Atoi(expiresStr)
	if err != nil || expiresHours <= 0 {
		expiresHours = 24
	}

	return &Config{
		ServiceName:   "natours-service",
		Port:          getEnv("PORT", "8000"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		MongoURI:      getEnv("MONGO_DB_URI", "mongodb://localhost:27017"),
		DatabaseName:  getEnv("MONGO_DB_NAME", "Natours"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		JaegerAddress: os.Getenv("JAEGER_ADDRESS"),
		SecretKey:     os.Getenv("SECRET_KEY"),
		TokenExpires:  time.Duration(expiresHours) * time.Hour,
		LogFile:       getEnv("LOG_FILE", "logs/logfile.log"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
