package env

import "os"

// Get reads an environment variable before the typed config has loaded,
// falling back when the variable is unset or blank.
func Get(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}
