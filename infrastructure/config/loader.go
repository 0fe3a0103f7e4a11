// Package config provides environment/secret loading helpers shared by
// raverify's configuration loading: Marble-secret-aware env lookup, plus
// small typed env accessors for the non-secret knobs (report validity
// window, public-key logging switch).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/R3E-Network/service_layer/infrastructure/hex"
	"github.com/R3E-Network/service_layer/infrastructure/marble"
)

// EnvOrSecret retrieves a configuration value from environment or Marble secrets.
// Priority:
// 1. Marble secret (production/TEE mode)
// 2. Environment variable
// 3. Default value (if provided)
//
// This is the preferred way to load configuration values in Marble services.
func EnvOrSecret(m *marble.Marble, envKey string, defaultValue string) string {
	// Try Marble secret first (production/TEE mode)
	if m != nil {
		if secret, ok := m.Secret(envKey); ok && len(secret) > 0 {
			return strings.TrimSpace(string(secret))
		}
	}

	// Fallback to environment variable
	value := strings.TrimSpace(os.Getenv(envKey))
	if value != "" {
		return value
	}

	return defaultValue
}

// EnvOrSecretBytes is like EnvOrSecret but returns raw bytes for binary values.
func EnvOrSecretBytes(m *marble.Marble, envKey string) ([]byte, error) {
	// Try Marble secret first
	if m != nil {
		if secret, ok := m.Secret(envKey); ok && len(secret) > 0 {
			return secret, nil
		}
	}

	// Fallback to environment variable (raw bytes, or hex when 0x-prefixed)
	value := strings.TrimSpace(os.Getenv(envKey))
	if value == "" {
		return nil, fmt.Errorf("%s is required", envKey)
	}

	// Check if hex-encoded
	if strings.HasPrefix(value, "0x") {
		return hex.DecodeString(value)
	}

	return []byte(value), nil
}

// GetEnvBool retrieves a boolean environment variable with optional default.
// Accepts: "true", "1", "yes", "y" (case-insensitive) as true.
func GetEnvBool(key string, defaultValue bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultValue
	}
	lower := strings.ToLower(val)
	return lower == "true" || lower == "1" || lower == "yes" || lower == "y"
}

// GetEnvInt retrieves an integer environment variable with optional default.
// Returns the default if the value is invalid.
func GetEnvInt(key string, defaultValue int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}
