// Package migrations embeds the PostgreSQL schema migrations so binaries can
// apply them without a checkout of this directory.
package migrations

import "embed"

// FS holds every *.up.sql / *.down.sql pair.
//
//go:embed *.sql
var FS embed.FS
