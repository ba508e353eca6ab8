// Package migrations embeds the SQL migration files applied by the
// SQLite store at startup.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
