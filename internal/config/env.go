package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	val, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("invalid float for %s: %q, using default %f", key, valueStr, fallback)
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	val, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("invalid int for %s: %q, using default %d", key, valueStr, fallback)
		return fallback
	}
	return val
}

func getEnvBool(key string, fallback bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return strings.EqualFold(valueStr, "true") || valueStr == "1"
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	val, err := decimal.NewFromString(valueStr)
	if err != nil {
		log.Printf("invalid decimal for %s: %q, using default %s", key, valueStr, fallback)
		return fallback
	}
	return val
}
