package validation

import (
	"strings"
	"testing"
)

func TestValidateIdentity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"generated", "abc", false},
		{"with hyphen", "user-1", false},
		{"with underscore", "user_1", false},
		{"numbers", "123", false},
		{"empty", "", true},
		{"dot", "user.1", true},
		{"comma", "a,b", true},
		{"slash", "a/b", true},
		{"control char", "a\x00b", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentity(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"csv", "15_min_segment.csv", false},
		{"json", "simulator_data.json", false},
		{"hidden", ".segments.csv", true},
		{"dotdot", "..", true},
		{"path", "out/a.csv", true},
		{"space", "a b.csv", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFileName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	if err := ValidateRange(60, 100); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateRange(5, 5); err != nil {
		t.Errorf("single-value range should be valid: %v", err)
	}
	if err := ValidateRange(10, 1); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestQuoteSQLString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"512MB", "'512MB'"},
		{"", "''"},
		{"it's", "'it''s'"},
	}

	for _, tt := range tests {
		if got := QuoteSQLString(tt.input); got != tt.expected {
			t.Errorf("QuoteSQLString(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
