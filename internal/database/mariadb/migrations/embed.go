package migrations

import "embed"

// FS contains embedded MariaDB migrations.
//
//go:embed *.sql
var FS embed.FS
