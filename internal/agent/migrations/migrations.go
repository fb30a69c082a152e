// Package migrations embeds the agent's sqlite schema migrations, applied
// with goose at startup. Migrations are additive only: readers ignore
// columns they do not know and absent rows default to disabled/zero.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
