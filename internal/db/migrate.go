package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/risick/microcredito-api/internal/db/migrations"
)

const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// Migrate runs the embedded goose migrations over a short-lived database/sql
// handle; the pgx pool used by the app is not involved.
func Migrate(ctx context.Context, databaseURL, command string) error {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect error: %w", err)
	}

	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, conn, ".")
	case MigrateDown:
		err = goose.DownContext(ctx, conn, ".")
	case MigrateStatus:
		err = goose.StatusContext(ctx, conn, ".")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}
