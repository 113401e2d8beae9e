// Package migrations embeds the goose SQL migrations for the accounts, units
// and reservations schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
