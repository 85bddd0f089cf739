package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string, defaultValue bool) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return defaultValue, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// ParseFormat reads --format and checks it against allowed. An unset flag
// yields allowed[0].
func ParseFormat(cmd *cobra.Command, allowed ...string) (string, error) {
	value, err := OptionalStringFlag(cmd, "format")
	if err != nil {
		return "", err
	}
	value = strings.ToLower(value)
	if value == "" {
		return allowed[0], nil
	}
	for _, candidate := range allowed {
		if value == candidate {
			return value, nil
		}
	}
	return "", &ExitError{
		Code:    2,
		Message: fmt.Sprintf("invalid format %q (supported: %s)", value, strings.Join(allowed, ", ")),
	}
}
