// Package migrations embeds the goose SQL migrations for the task board schema.
package migrations

import "embed"

// FS holds every *.sql migration, named in goose's versioned format.
//
//go:embed *.sql
var FS embed.FS
