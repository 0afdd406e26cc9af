package mariadb

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    []string
		wantErr bool
	}{
		{
			name: "adds dial timeout",
			dsn:  "user:pass@tcp(localhost:3306)/attendance",
			want: []string{"tcp(localhost:3306)/attendance", "timeout=10s"},
		},
		{
			name: "keeps explicit timeout",
			dsn:  "user:pass@tcp(db:3306)/attendance?timeout=3s",
			want: []string{"timeout=3s"},
		},
		{
			name: "drops multi statements",
			dsn:  "user:pass@tcp(db:3306)/attendance?multiStatements=true",
			want: []string{"tcp(db:3306)/attendance"},
		},
		{name: "empty", dsn: "", wantErr: true},
		{name: "garbage", dsn: "not a dsn", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDSN(tc.dsn)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseDSN(%q) = %q, want error", tc.dsn, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDSN(%q): %v", tc.dsn, err)
			}
			for _, part := range tc.want {
				if !strings.Contains(got, part) {
					t.Errorf("ParseDSN(%q) = %q, want it to contain %q", tc.dsn, got, part)
				}
			}
			if strings.Contains(got, "multiStatements") {
				t.Errorf("ParseDSN(%q) = %q, multiStatements must be off", tc.dsn, got)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"duplicate entry", &mysql.MySQLError{Number: 1062}, true},
		{"wrapped", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062}), true},
		{"other mysql error", &mysql.MySQLError{Number: 1146}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Dialect.IsUniqueViolation(tc.err); got != tc.want {
				t.Errorf("IsUniqueViolation(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
