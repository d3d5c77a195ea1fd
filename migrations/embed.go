// Package migrations embeds the SQL schema migrations into the binary.
//
// Importing this package (for side effects) wires the embedded files
// into the database package's migration runner:
//
//	import _ "github.com/SaschaWenning/cocktailbot-core/migrations"
package migrations

import (
	"embed"

	"github.com/SaschaWenning/cocktailbot-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
