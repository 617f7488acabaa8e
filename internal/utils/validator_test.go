package utils

import "testing"

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"Password123", true},
		{"aB3aB3aB", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoNumbersHere", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := ValidatePassword(tc.password); got != tc.valid {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tc.password, got, tc.valid)
		}
	}
}

func TestSanitizeEmail(t *testing.T) {
	if got := SanitizeEmail("  User@Example.COM "); got != "user@example.com" {
		t.Errorf("SanitizeEmail returned %q", got)
	}
}
