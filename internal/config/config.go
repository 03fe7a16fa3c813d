package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const DefaultBaseURL = "https://api.clockify.me/api/v1"

type Config struct {
	CLOCKIFY_API_KEY      string
	CLOCKIFY_WORKSPACE_ID string
	CLOCKIFY_BASE_URL     string

	// Every mutating API call is skipped unless this is true.
	APPROVE_CHANGES bool
	VERBOSE         bool

	EXPORT_DIR         string
	DEFAULT_USER_EMAIL string
}

func ReadConfig() *Config {
	return &Config{
		CLOCKIFY_API_KEY:      os.Getenv("CLOCKIFY_API_KEY"),
		CLOCKIFY_WORKSPACE_ID: os.Getenv("CLOCKIFY_WORKSPACE_ID"),
		CLOCKIFY_BASE_URL:     getEnvOrDefault("CLOCKIFY_BASE_URL", DefaultBaseURL),

		APPROVE_CHANGES: getEnvBool("APPROVE_CHANGES", false),
		VERBOSE:         getEnvBool("VERBOSE", false),

		EXPORT_DIR:         getEnvOrDefault("EXPORT_DIR", "Export"),
		DEFAULT_USER_EMAIL: os.Getenv("DEFAULT_USER_EMAIL"),
	}
}

// Validate reports every missing required variable at once so a misconfigured
// run fails with a single actionable message.
func (c *Config) Validate() error {
	var missing []string
	if c.CLOCKIFY_API_KEY == "" {
		missing = append(missing, "CLOCKIFY_API_KEY")
	}
	if c.CLOCKIFY_WORKSPACE_ID == "" {
		missing = append(missing, "CLOCKIFY_WORKSPACE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(strings.ToLower(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}
