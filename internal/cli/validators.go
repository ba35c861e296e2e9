package cli

import (
	"fmt"

	"github.com/pluqqy/proposal-cli/pkg/files"
)

// ValidateOutputFormat validates the output format flag
func ValidateOutputFormat(format string) error {
	validFormats := []string{"text", "json", "yaml"}
	if Contains(validFormats, format) {
		return nil
	}
	return fmt.Errorf("invalid output format: %s (must be: text, json, or yaml)", format)
}

// ValidateProposalArg validates an optional proposal name argument and
// returns the name to use
func ValidateProposalArg(args []string) (string, error) {
	name := files.DefaultProposal
	if len(args) > 0 {
		name = args[0]
	}
	if err := files.ValidateProposalName(name); err != nil {
		return "", fmt.Errorf("invalid proposal name %q: %w", name, err)
	}
	return name, nil
}

// Contains checks if a string is in a slice
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
