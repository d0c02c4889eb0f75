package provider

import (
	"fmt"
	"strings"
)

// ValidateConfigFields checks an operator-supplied configuration against a
// provider's form descriptor. Missing or blank required fields fail with a
// config error naming the offending key.
func ValidateConfigFields(providerName string, config map[string]string, fields []ConfigField) error {
	for _, field := range fields {
		if !field.Required {
			continue
		}

		value, exists := config[field.Key]
		if !exists {
			return fmt.Errorf("%s: %w: required field '%s' is missing", providerName, ErrConfig, field.Key)
		}
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s: %w: required field '%s' cannot be empty", providerName, ErrConfig, field.Key)
		}
	}
	return nil
}
