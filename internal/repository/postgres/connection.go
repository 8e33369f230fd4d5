package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studioflow/internal/domain/repositories"
)

// supabasePoolerPort is the transaction-mode PgBouncer port
const supabasePoolerPort = 6543

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Contracts     string
	Clients       string
	Notifications string
	// ChangeChannel is the LISTEN/NOTIFY channel carrying contract changes
	ChangeChannel string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Contracts:     fmt.Sprintf("%scontracts", prefix),
		Clients:       fmt.Sprintf("%sclients", prefix),
		Notifications: fmt.Sprintf("%snotifications", prefix),
		ChangeChannel: fmt.Sprintf("%scontract_changes", prefix),
	}
}

// CreateConnectionPool opens and pings a pgx pool.
//
// Behind the Supabase transaction pooler prepared statements break, so the
// pool switches to QueryExecModeCacheDescribe there. That mode still uses the
// extended protocol, which the JSONB contract document needs. An explicit
// default_query_exec_mode in the URL wins.
//
// LISTEN does not survive transaction pooling. Contract streams need a
// direct connection (port 5432).
func CreateConnectionPool(ctx context.Context, databaseURL string, maxConns int32, logger *slog.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = maxConns
	config.MinConns = min(5, maxConns)

	if config.ConnConfig.Port == supabasePoolerPort {
		if config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
			config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		}
		logger.Warn("connected through the transaction pooler; contract streams will not receive changes",
			"port", supabasePoolerPort)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction bound to ctx, or the pool
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.Querier {
	if tx := repositories.TxFrom(ctx); tx != nil {
		return tx
	}
	return pool
}
