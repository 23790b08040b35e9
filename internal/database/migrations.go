// FilePath: internal/database/migrations.go
package database

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	nuts "github.com/vaudience/go-nuts"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies all pending schema migrations.
func Migrate(db DB) error {
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("error setting goose dialect: %w", err)
	}

	if err := goose.Up(db.GetDB().DB, "migrations"); err != nil {
		return fmt.Errorf("error applying migrations: %w", err)
	}

	nuts.L.Infof("[PostgresDB] Schema migrations applied")
	return nil
}
