package db

import "embed"

// migrationsFS holds the run-history schema migrations applied at startup.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS
