package config

import (
	"os"
	"strconv"
)

// getEnvInt returns the integer value of key, or defaultValue when unset or malformed.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
