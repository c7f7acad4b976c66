package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func LoadEnv() error {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println(fmt.Sprintf("Could not load .env file: %v", err))
		return err
	}
	return nil
}

func GetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Environment variable %s is required but not set", key)
	}
	return value
}

// GetEnvDefault returns the value of key, or fallback when it is unset or blank.
func GetEnvDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func GetBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(GetEnvDefault(key, strconv.FormatBool(fallback)))
	if err != nil {
		log.Printf("Invalid boolean for %s, using %v", key, fallback)
		return fallback
	}
	return value
}

func GetInt(key string, fallback int) int {
	value, err := strconv.Atoi(GetEnvDefault(key, strconv.Itoa(fallback)))
	if err != nil {
		log.Printf("Invalid integer for %s, using %d", key, fallback)
		return fallback
	}
	return value
}

func GetFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(GetEnvDefault(key, strconv.FormatFloat(fallback, 'f', -1, 64)), 64)
	if err != nil {
		log.Printf("Invalid float for %s, using %v", key, fallback)
		return fallback
	}
	return value
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(GetEnvDefault(key, fallback.String()))
	if err != nil {
		log.Printf("Invalid duration for %s, using %s", key, fallback)
		return fallback
	}
	return value
}
