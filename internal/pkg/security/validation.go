// Package security provides security utilities for input validation,
// sanitization, and sensitive data masking.
package security

import (
	"fmt"
	"regexp"
)

// Validation limits.
const (
	// Dataset name limits.
	MinDatasetNameLength = 1
	MaxDatasetNameLength = 64

	// Retrieval cutoff limits.
	MinCutoff = 1
	MaxCutoff = 10000

	// Run listing limits.
	MaxListLimit = 1000
)

// ValidationError represents a field validation error.
type ValidationError struct {
	Field      string
	Value      interface{}
	Constraint string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed for %s: %s (got: %v)", e.Field, e.Constraint, e.Value)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Constraint)
}

// datasetNameRegex matches valid dataset names: alphanumeric, hyphen,
// underscore, dot; must start with alphanumeric.
var datasetNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateDatasetName validates a dataset name.
// Requirements: Required, 1-64 chars, alphanumeric + hyphen + underscore + dot,
// must start with alphanumeric.
func ValidateDatasetName(name string) error {
	if name == "" {
		return &ValidationError{
			Field:      "dataset",
			Constraint: "required",
		}
	}

	if len(name) > MaxDatasetNameLength {
		return &ValidationError{
			Field:      "dataset",
			Value:      len(name),
			Constraint: fmt.Sprintf("maximum length is %d characters", MaxDatasetNameLength),
		}
	}

	if !datasetNameRegex.MatchString(name) {
		return &ValidationError{
			Field:      "dataset",
			Value:      SanitizeForLog(name),
			Constraint: "must contain only alphanumeric characters, dots, hyphens, and underscores, and start with alphanumeric",
		}
	}

	return nil
}

// ValidateCutoff validates a retrieval cutoff.
// Requirements: 1-10000.
func ValidateCutoff(k int) error {
	if k < MinCutoff {
		return &ValidationError{
			Field:      "ks",
			Value:      k,
			Constraint: fmt.Sprintf("minimum value is %d", MinCutoff),
		}
	}

	if k > MaxCutoff {
		return &ValidationError{
			Field:      "ks",
			Value:      k,
			Constraint: fmt.Sprintf("maximum value is %d", MaxCutoff),
		}
	}

	return nil
}

// ValidateListLimit validates a run listing limit.
// Requirements: 1-1000.
func ValidateListLimit(limit int) error {
	if limit < 1 {
		return &ValidationError{
			Field:      "limit",
			Value:      limit,
			Constraint: "minimum value is 1",
		}
	}

	if limit > MaxListLimit {
		return &ValidationError{
			Field:      "limit",
			Value:      limit,
			Constraint: fmt.Sprintf("maximum value is %d", MaxListLimit),
		}
	}

	return nil
}
