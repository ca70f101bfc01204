package security

import (
	"net/http"
	"strings"
	"testing"
)

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain string", input: "hello world", want: "hello world"},
		{name: "empty", input: "", want: ""},
		{name: "newline escaped", input: "line1\nline2", want: "line1\\nline2"},
		{name: "carriage return escaped", input: "a\rb", want: "a\\rb"},
		{name: "tab escaped", input: "a\tb", want: "a\\tb"},
		{name: "control characters removed", input: "a\x00b\x1bc", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeForLog(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeForLog(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeForLog_Truncation(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := SanitizeForLog(long)

	if len(got) > 210 {
		t.Errorf("sanitized length = %d, want <= 210", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected truncation marker")
	}
}

func TestSanitizeForLog_LogInjection(t *testing.T) {
	// Simulated log injection attempt
	malicious := "dataset\n2026-01-01 FAKE LOG ENTRY admin_login=true"
	got := SanitizeForLog(malicious)

	if strings.Contains(got, "\n") {
		t.Error("sanitized string should not contain raw newlines")
	}
}

func TestMaskSensitiveHeaders(t *testing.T) {
	headers := http.Header{
		"Authorization": []string{"Bearer secret-token"},
		"X-Api-Key":     []string{"key-123"},
		"Content-Type":  []string{"application/json"},
		"X-My-Password": []string{"hunter2"},
	}

	masked := MaskSensitiveHeaders(headers)

	if masked.Get("Authorization") != "[REDACTED]" {
		t.Errorf("Authorization = %q, want [REDACTED]", masked.Get("Authorization"))
	}
	if masked.Get("X-Api-Key") != "[REDACTED]" {
		t.Errorf("X-Api-Key = %q, want [REDACTED]", masked.Get("X-Api-Key"))
	}
	if masked.Get("X-My-Password") != "[REDACTED]" {
		t.Errorf("X-My-Password = %q, want [REDACTED]", masked.Get("X-My-Password"))
	}
	if masked.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", masked.Get("Content-Type"))
	}

	// Original must be untouched
	if headers.Get("Authorization") != "Bearer secret-token" {
		t.Error("original headers were modified")
	}
}

func TestMaskSensitiveHeaders_Nil(t *testing.T) {
	if got := MaskSensitiveHeaders(nil); got != nil {
		t.Errorf("MaskSensitiveHeaders(nil) = %v, want nil", got)
	}
}
