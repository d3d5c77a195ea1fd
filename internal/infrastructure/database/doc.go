// Package database provides SQLite persistence for Cocktailbot Core.
//
// This package manages:
//   - Database connection lifecycle (open, health check, close)
//   - WAL mode and busy-timeout configuration
//   - Schema migrations from an embedded filesystem
//
// # Concurrency
//
// SQLite supports one writer at a time. The connection pool is limited
// to a single connection, and WAL mode allows concurrent reads during
// writes. All repositories in this application share one *DB.
//
// # Migrations
//
// Migration files follow the naming scheme:
//
//	YYYYMMDD_HHMMSS_description.up.sql
//	YYYYMMDD_HHMMSS_description.down.sql
//
// They are embedded by the migrations package, which sets MigrationsFS
// at init time. Call db.Migrate(ctx) once at startup.
package database
