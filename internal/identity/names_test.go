package identity

import (
	"errors"
	"testing"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		err      error
	}{
		{"Alice", "Alice", nil},
		{"  Alice  ", "Alice", nil},
		{"Jan \t  Novák", "Jan Novák", nil},
		// decomposed "á" (a + combining acute) composes to a single rune
		{"Novák", "Novák", nil},
		{"   ", "", ErrEmptyName},
		{"", "", ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := CanonicalName(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("CanonicalName(%q) error = %v, want %v", tt.input, err, tt.err)
			}
			if result != tt.expected {
				t.Errorf("CanonicalName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Honza", "Honza"},
		{"Jiří", "Jiri"},
		{"Žluťoučký kůň", "Zlutoucky kun"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := RemoveDiacritics(tt.input)
			if result != tt.expected {
				t.Errorf("RemoveDiacritics(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Jan Novák", "jan novak"},
		{"jan-novak", "jan novak"},
		{"JOHN  DOE", "john doe"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeName(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name, query string
		want        bool
	}{
		{"Jan Novák", "novak", true},
		{"Jan Novák", "JAN", true},
		{"Anna-Marie Svobodová", "anna marie", true},
		{"Alice", "bob", false},
		{"Alice", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.query, func(t *testing.T) {
			if got := Matches(tt.name, tt.query); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.name, tt.query, got, tt.want)
			}
		})
	}
}
