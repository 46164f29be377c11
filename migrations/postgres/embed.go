// Package postgres embeds SQL migration files.
package postgres

import "embed"

// FS holds the migration files, named {version}_{name}.sql.
//
//go:embed *.sql
var FS embed.FS
