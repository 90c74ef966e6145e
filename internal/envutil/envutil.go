// Package envutil provides helper functions for environment variable handling.
package envutil

import (
	"os"
	"strings"

	"github.com/photo-album/eda-app/internal/meta"
)

// HostEnvKey constructs a host-level environment variable name
// by combining ENV_PREFIX with the given suffix.
// Example: HostEnvKey("PORT_EMULATOR") returns "EDA_PORT_EMULATOR"
func HostEnvKey(suffix string) string {
	prefix := strings.TrimSpace(os.Getenv("ENV_PREFIX"))
	if prefix == "" {
		prefix = meta.EnvPrefix
	}
	return prefix + "_" + suffix
}

// GetHostEnv retrieves a host-level environment variable.
func GetHostEnv(suffix string) string {
	return os.Getenv(HostEnvKey(suffix))
}

// GetenvDefault returns the trimmed value of key, or fallback when unset or blank.
func GetenvDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
