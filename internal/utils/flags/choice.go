package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefix    = "<"
	choicePlaceholderSuffix    = ">"
	choiceSeparatorLiteral     = "|"
	choiceUsageEmptyTemplate   = "`%s`"
	choiceUsageFullTemplate    = "`%s` %s"
	invalidChoiceErrorTemplate = "invalid %s %q (expected one of %s)"
)

// Choice describes a flag accepting one value from a fixed set.
type Choice struct {
	Name        string
	Default     string
	Values      []string
	Description string
}

// Usage builds a usage string where the default option is capitalized inside a placeholder.
func (choice Choice) Usage() string {
	placeholder := choicePlaceholderPrefix + strings.Join(choice.highlighted(), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(choice.Description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, choice.Description)
}

// Normalize lowercases the value and verifies it is one of the allowed values.
// An empty value resolves to the default.
func (choice Choice) Normalize(value string) (string, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	if len(normalizedValue) == 0 {
		normalizedValue = strings.ToLower(strings.TrimSpace(choice.Default))
	}
	for _, allowed := range choice.Values {
		if strings.ToLower(strings.TrimSpace(allowed)) == normalizedValue {
			return normalizedValue, nil
		}
	}
	return "", fmt.Errorf(invalidChoiceErrorTemplate, choice.Name, value, choice.Usage())
}

func (choice Choice) highlighted() []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(choice.Default))
	highlighted := make([]string, 0, len(choice.Values))
	seen := make(map[string]struct{}, len(choice.Values))

	for _, value := range choice.Values {
		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) == 0 {
			continue
		}

		normalizedValue := strings.ToLower(trimmedValue)
		if _, exists := seen[normalizedValue]; exists {
			continue
		}

		displayValue := trimmedValue
		if normalizedValue == normalizedDefault && len(normalizedValue) > 0 {
			displayValue = strings.ToUpper(trimmedValue)
		}

		highlighted = append(highlighted, displayValue)
		seen[normalizedValue] = struct{}{}
	}

	return highlighted
}
