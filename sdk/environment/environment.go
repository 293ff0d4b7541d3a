// Package environment provides utilities for managing environment variables
// and configuration loading with support for namespacing and defaults.
package environment

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// Load loads environment variables from the given .env files, or from .env in
// the working directory when none are given. Missing files are not an error;
// variables already present in the process environment are never overridden.
//
// Example:
//
//	if err := environment.Load(); err != nil {
//	    log.Printf("reading .env: %v", err)
//	}
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// GetEnvKeyPrefix constructs a namespaced environment variable key by
// combining a prefix with the key name using an underscore.
//
//	GetEnvKeyPrefix("ROUTEGEN", "LOG_LEVEL") // "ROUTEGEN_LOG_LEVEL"
//	GetEnvKeyPrefix("", "LOG_LEVEL")         // "LOG_LEVEL"
func GetEnvKeyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", prefix, key)
}
