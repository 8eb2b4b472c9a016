package application

import (
	"fmt"
	"strings"

	"zdguide/internal/ports"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "apiToken" -> "API token")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"subdomain": "subdomain",
		"email":     "account email",
		"apiToken":  "API token",
		"intent":    "intent",
		"query":     "query",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidateCredentials checks that all three credential strings are set.
// Returns a *ConfigurationError naming every missing field.
func ValidateCredentials(creds ports.Credentials) error {
	fields := []struct {
		name  string
		value string
	}{
		{"subdomain", creds.Subdomain},
		{"email", creds.Email},
		{"apiToken", creds.APIToken},
	}

	var missing []string
	for _, f := range fields {
		if err := ValidateRequired(f.name, f.value); err != nil {
			missing = append(missing, formatFieldName(f.name))
		}
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return ValidateSubdomain(creds.Subdomain)
}

// ValidateSubdomain rejects subdomains that cannot form a host label
func ValidateSubdomain(subdomain string) error {
	for _, r := range subdomain {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '-' {
			return &ValidationError{
				Field:   "subdomain",
				Message: fmt.Sprintf("invalid character %q in subdomain", r),
			}
		}
	}
	return nil
}
