package validation

import (
	"strings"
	"testing"
)

func TestNormalizeKeyword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"elections", "elections"},
		{"  Elections  ", "Elections"},
		{"\tclimate change\n", "climate change"},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeKeyword(tt.in); got != tt.want {
			t.Errorf("NormalizeKeyword(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateKeyword(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		wantOK  bool
	}{
		{"simple", "elections", true},
		{"multi word", "climate change", true},
		{"max length", strings.Repeat("a", MaxKeywordLength), true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", MaxKeywordLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := ValidateKeyword(tt.keyword)
			if ok != tt.wantOK {
				t.Errorf("ValidateKeyword(%q) = %v (%s), want %v", tt.keyword, ok, msg, tt.wantOK)
			}
			if !ok && msg == "" {
				t.Error("ValidateKeyword() returned no message for invalid keyword")
			}
		})
	}
}
