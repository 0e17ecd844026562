// Package migrations embeds the client-side sqlite schema migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
