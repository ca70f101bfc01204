package security

import (
	"strings"
	"testing"
)

func TestValidateDatasetName(t *testing.T) {
	tests := []struct {
		name    string
		dataset string
		wantErr bool
	}{
		{name: "simple", dataset: "nq-test", wantErr: false},
		{name: "with dots and underscores", dataset: "squad_v1.1", wantErr: false},
		{name: "single character", dataset: "a", wantErr: false},
		{name: "empty", dataset: "", wantErr: true},
		{name: "leading hyphen", dataset: "-bad", wantErr: true},
		{name: "spaces", dataset: "my dataset", wantErr: true},
		{name: "path traversal", dataset: "../etc/passwd", wantErr: true},
		{name: "too long", dataset: strings.Repeat("x", 65), wantErr: true},
		{name: "max length ok", dataset: strings.Repeat("x", 64), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatasetName(tt.dataset)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDatasetName(%q) error = %v, wantErr %v", tt.dataset, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCutoff(t *testing.T) {
	tests := []struct {
		name    string
		k       int
		wantErr bool
	}{
		{name: "minimum", k: 1, wantErr: false},
		{name: "typical", k: 100, wantErr: false},
		{name: "maximum", k: MaxCutoff, wantErr: false},
		{name: "zero", k: 0, wantErr: true},
		{name: "negative", k: -5, wantErr: true},
		{name: "above maximum", k: MaxCutoff + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCutoff(tt.k)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCutoff(%d) error = %v, wantErr %v", tt.k, err, tt.wantErr)
			}
		})
	}
}

func TestValidateListLimit(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		wantErr bool
	}{
		{name: "minimum", limit: 1, wantErr: false},
		{name: "maximum", limit: MaxListLimit, wantErr: false},
		{name: "zero", limit: 0, wantErr: true},
		{name: "above maximum", limit: MaxListLimit + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateListLimit(tt.limit)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateListLimit(%d) error = %v, wantErr %v", tt.limit, err, tt.wantErr)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "limit", Value: 0, Constraint: "minimum value is 1"}
	want := "validation failed for limit: minimum value is 1 (got: 0)"

	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = &ValidationError{Field: "dataset", Constraint: "required"}
	want = "validation failed for dataset: required"

	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
