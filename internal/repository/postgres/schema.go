package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the prefixed tables when they do not exist yet
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, renderSchema(tables)); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func renderSchema(tables *TableNames) string {
	return strings.NewReplacer(
		"{{contracts}}", tables.Contracts,
		"{{clients}}", tables.Clients,
		"{{notifications}}", tables.Notifications,
	).Replace(schemaSQL)
}
