package sqlstore

import (
	"errors"
	"slices"
	"testing"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name     string
		numbered bool
		query    string
		want     string
	}{
		{"question marks kept", false, "SELECT id FROM t WHERE a = ? AND b = ?", "SELECT id FROM t WHERE a = ? AND b = ?"},
		{"numbered", true, "SELECT id FROM t WHERE a = ? AND b = ?", "SELECT id FROM t WHERE a = $1 AND b = $2"},
		{"no placeholders", true, "SELECT 1", "SELECT 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Dialect{NumberedPlaceholders: tc.numbered}
			if got := d.Rebind(tc.query); got != tc.want {
				t.Errorf("Rebind(%q) = %q, want %q", tc.query, got, tc.want)
			}
		})
	}
}

func TestUniqueViolation(t *testing.T) {
	dup := errors.New("duplicate")
	d := Dialect{IsUniqueViolation: func(err error) bool { return errors.Is(err, dup) }}

	if !d.uniqueViolation(dup) {
		t.Error("uniqueViolation(dup) = false, want true")
	}
	if d.uniqueViolation(nil) {
		t.Error("uniqueViolation(nil) = true, want false")
	}
	if (Dialect{}).uniqueViolation(dup) {
		t.Error("dialect without classifier reported a violation")
	}
}

func TestSplitStatements(t *testing.T) {
	content := `-- identities
CREATE TABLE identities (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);

-- index
CREATE INDEX idx_identities_name ON identities (name);
SELECT 1`

	got := SplitStatements(content)
	want := []string{
		"CREATE TABLE identities (\nid INTEGER PRIMARY KEY,\nname TEXT NOT NULL\n)",
		"CREATE INDEX idx_identities_name ON identities (name)",
		"SELECT 1",
	}
	if !slices.Equal(got, want) {
		t.Errorf("SplitStatements() = %q, want %q", got, want)
	}
}
