package fhirmdr

import (
	"embed"
	"io/fs"
)

// migrationsFS contains the embedded curation schema migrations under
// data/sql/migrations/sqlite.
//
//go:embed data/sql/migrations/sqlite/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the full embedded migration tree.
func GetMigrationsFS() fs.FS {
	return migrationsFS
}

// GetCoreMigrationsFS returns the curation schema migration tree.
func GetCoreMigrationsFS() fs.FS {
	return migrationsFS
}
