package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"studioflow/internal/config"
	"studioflow/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.SupabaseDBURL == "" {
		log.Fatal("SUPABASE_DB_URL environment variable is required")
	}
	if cfg.Environment == "prod" {
		log.Fatal("refusing to drop production tables")
	}

	tables := postgres.NewTableNames(cfg.TablePrefix)

	db, err := sql.Open("pgx", cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	dropSQL := fmt.Sprintf(`
		DROP TABLE IF EXISTS %s CASCADE;
		DROP TABLE IF EXISTS %s CASCADE;
		DROP TABLE IF EXISTS %s CASCADE;
	`, tables.Notifications, tables.Contracts, tables.Clients)

	if _, err := db.Exec(dropSQL); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	fmt.Printf("All tables dropped successfully (prefix: %s)\n", cfg.TablePrefix)
}
