// Package migrations embeds SQL migration files for goose.
//
// Files follow the goose naming convention and are applied in order during
// Postgres submission store initialization.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
