package migrations

import "embed"

// FS holds the dev server schema migrations.
//
//go:embed *.sql
var FS embed.FS
