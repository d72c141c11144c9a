// Package migrations embeds the SQLite schema migrations applied by goose.
package migrations

import "embed"

// FS holds the goose SQL migrations, named NNNNN_description.sql.
//
//go:embed *.sql
var FS embed.FS
