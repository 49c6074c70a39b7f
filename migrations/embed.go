// Package migrations embeds the ledger schema so the server and the migrate
// command apply the same files.
package migrations

import "embed"

// FS holds the numbered *.up.sql/*.down.sql pairs
//
//go:embed *.sql
var FS embed.FS
