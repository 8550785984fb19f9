// Package migrations embeds the client's SQLite schema, applied by goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
