package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect captures the differences between the supported SQL backends.
type Dialect struct {
	Name string
	// NumberedPlaceholders rewrites ? to $1, $2, ... (PostgreSQL).
	NumberedPlaceholders bool
	// Returning inserts with RETURNING id instead of reading LastInsertId.
	Returning bool
	// IsUniqueViolation reports whether err is a unique constraint violation.
	IsUniqueViolation func(err error) bool
}

// Rebind converts a query written with ? placeholders to the dialect's form.
func (d Dialect) Rebind(query string) string {
	if !d.NumberedPlaceholders {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (d Dialect) uniqueViolation(err error) bool {
	return err != nil && d.IsUniqueViolation != nil && d.IsUniqueViolation(err)
}
