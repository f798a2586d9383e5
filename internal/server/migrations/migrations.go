// Package migrations embeds the goose SQL migrations for the directory
// schema and the ticket table.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
