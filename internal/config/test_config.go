package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration from the .env file or TEST_-prefixed environment variables for integration tests
// If TEST_STORAGE_DRIVER is not set, it returns nil so that tests depending on external storage can skip
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	if os.Getenv("TEST_STORAGE_DRIVER") == "" {
		return nil, nil
	}
	return fromEnv("TEST_")
}
