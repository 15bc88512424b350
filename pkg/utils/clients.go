package utils

import (
	"errors"
	"strings"
)

// ValidateClientName validates a user-entered client name. Names become
// storage key prefixes, so path separators and ".." are rejected to prevent
// writes outside the client's directory.
func ValidateClientName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("client name is required and must be a non-empty string")
	}
	if strings.ContainsAny(trimmed, "/\\") || strings.Contains(trimmed, "..") {
		return errors.New("client name must not contain path separators or '..'")
	}
	return nil
}
