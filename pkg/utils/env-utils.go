package utils

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9]+`)

// GenerateEnvVarName converts input to upper case, replaces runs of
// non-alphanumeric characters with underscores and trims leading and
// trailing underscores.
func GenerateEnvVarName(input string) string {
	normalized := nonAlphanumeric.ReplaceAllString(strings.ToUpper(input), "_")
	return strings.Trim(normalized, "_")
}

// GenerateServiceAPIKeyEnvVarName: SERVICE_API_KEY_FOR_{NORMALIZED_NAME}
func GenerateServiceAPIKeyEnvVarName(serviceName string) string {
	return "SERVICE_API_KEY_FOR_" + GenerateEnvVarName(serviceName)
}

// GenerateSmtpPasswordEnvVarName: SMTP_PASSWORD_FOR_{NORMALIZED_HOST}
func GenerateSmtpPasswordEnvVarName(host string) string {
	return "SMTP_PASSWORD_FOR_" + GenerateEnvVarName(host)
}
