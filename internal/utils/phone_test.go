package utils

import (
	"testing"
)

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		region      string
		expected    string
		shouldError bool
	}{
		{
			name:     "Indian mobile with country code",
			input:    "+919876543210",
			region:   "IN",
			expected: "+919876543210",
		},
		{
			name:     "Indian mobile without country code",
			input:    "9876543210",
			region:   "IN",
			expected: "+919876543210",
		},
		{
			name:     "Indian mobile with trunk prefix",
			input:    "09876543210",
			region:   "IN",
			expected: "+919876543210",
		},
		{
			name:     "Indian mobile with spaces",
			input:    "98765 43210",
			region:   "IN",
			expected: "+919876543210",
		},
		{
			name:     "Indian mobile with dashes and padding",
			input:    "  +91-98765-43210  ",
			region:   "IN",
			expected: "+919876543210",
		},
		{
			name:     "Romanian mobile in its own region",
			input:    "0721234567",
			region:   "RO",
			expected: "+40721234567",
		},
		{
			name:     "Foreign number with country code ignores region",
			input:    "+49 170 1234567",
			region:   "IN",
			expected: "+491701234567",
		},
		{
			name:     "Irish mobile with parentheses",
			input:    "+353 (87) 123 4567",
			region:   "IN",
			expected: "+353871234567",
		},
		{
			name:        "Too short",
			input:       "123",
			region:      "IN",
			shouldError: true,
		},
		{
			name:        "Letters",
			input:       "abcdefghij",
			region:      "IN",
			shouldError: true,
		},
		{
			name:        "Empty string",
			input:       "",
			region:      "IN",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NormalizePhoneNumber(tt.input, tt.region)

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error for input %q, but got none", tt.input)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error for input %q: %v", tt.input, err)
				}
				if result != tt.expected {
					t.Errorf("For input %q, expected %q but got %q", tt.input, tt.expected, result)
				}
			}
		})
	}
}
