// Package migrations embeds the portal schema for tests and tooling.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
