package utils

import (
	"strconv"
	"strings"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// IsTruthy reports whether a gateway boolean field is set. Billplz only ever sends "true".
func IsTruthy(value string) bool {
	return strings.TrimSpace(value) == "true"
}
