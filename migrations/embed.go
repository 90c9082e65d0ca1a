// Package migrations embeds the schema migrations applied at startup and by
// cmd/migrate.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed *.sql
var files embed.FS

// GetFS returns the embedded migrations filesystem
func GetFS() fs.FS {
	return files
}
