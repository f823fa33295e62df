// Package migrations embeds the Postgres schema for the user directory.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
