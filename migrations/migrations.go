// Package migrations carries the goose SQL files for the sample store.
package migrations

import "embed"

// FS holds every migration, rooted at Dir.
//
//go:embed *.sql
var FS embed.FS

const Dir = "."
