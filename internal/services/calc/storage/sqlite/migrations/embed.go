package migrations

import "embed"

// FS contains embedded SQLite migrations for calculator storage.
//
//go:embed *.sql
var FS embed.FS
