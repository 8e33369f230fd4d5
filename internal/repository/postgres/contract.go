package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studioflow/internal/domain"
	models "studioflow/internal/domain/models/contract"
	contractRepo "studioflow/internal/domain/repositories/contract"
)

// PostgresContractRepository stores each contract as one JSONB document.
// The scalar columns exist for filtering and the optimistic revision check.
type PostgresContractRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewContractRepository creates a new contract repository
func NewContractRepository(config *RepositoryConfig) contractRepo.ContractRepository {
	return &PostgresContractRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// changeNotice is the NOTIFY payload; subscribers re-read the full document
type changeNotice struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
}

func (r *PostgresContractRepository) notify(ctx context.Context, c *models.Contract) error {
	payload, err := json.Marshal(changeNotice{ID: c.ID, OrganizationID: c.OrganizationID})
	if err != nil {
		return fmt.Errorf("encode change notice: %w", err)
	}
	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, "SELECT pg_notify($1, $2)", r.tables.ChangeChannel, string(payload)); err != nil {
		return fmt.Errorf("notify contract change: %w", err)
	}
	return nil
}

// Create inserts a new contract document
func (r *PostgresContractRepository) Create(ctx context.Context, c *models.Contract) error {
	c.Revision = 1
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode contract: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, organization_id, client_id, status, revision, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Contracts)

	executor := GetExecutor(ctx, r.pool)
	_, err = executor.Exec(ctx, query,
		c.ID,
		c.OrganizationID,
		c.ClientID,
		string(c.Status),
		c.Revision,
		doc,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("contract %s already exists", c.ID),
				ResourceType: "contract",
				ResourceID:   c.ID,
			}
		}
		return fmt.Errorf("create contract: %w", err)
	}

	return r.notify(ctx, c)
}

func (r *PostgresContractRepository) scanDocument(row pgx.Row) (*models.Contract, error) {
	var (
		doc      []byte
		revision int64
	)
	if err := row.Scan(&doc, &revision); err != nil {
		return nil, err
	}
	var c models.Contract
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("decode contract: %w", err)
	}
	c.Revision = revision
	return &c, nil
}

// Get retrieves a contract by ID within an organization
func (r *PostgresContractRepository) Get(ctx context.Context, id, organizationID string) (*models.Contract, error) {
	query := fmt.Sprintf(`
		SELECT document, revision
		FROM %s
		WHERE id = $1 AND organization_id = $2
	`, r.tables.Contracts)

	executor := GetExecutor(ctx, r.pool)
	c, err := r.scanDocument(executor.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		return nil, notFoundOr(err, "contract", id, "get contract")
	}
	return c, nil
}

// GetByID retrieves a contract by ID regardless of organization
func (r *PostgresContractRepository) GetByID(ctx context.Context, id string) (*models.Contract, error) {
	query := fmt.Sprintf(`
		SELECT document, revision
		FROM %s
		WHERE id = $1
	`, r.tables.Contracts)

	executor := GetExecutor(ctx, r.pool)
	c, err := r.scanDocument(executor.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "contract", id, "get contract")
	}
	return c, nil
}

// List retrieves an organization's contracts, most recently updated first
func (r *PostgresContractRepository) List(ctx context.Context, organizationID string) ([]models.Contract, error) {
	query := fmt.Sprintf(`
		SELECT document, revision
		FROM %s
		WHERE organization_id = $1
		ORDER BY updated_at DESC
	`, r.tables.Contracts)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	contracts := []models.Contract{}
	for rows.Next() {
		c, err := r.scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}

	return contracts, nil
}

// Put replaces the stored document when its revision still matches
func (r *PostgresContractRepository) Put(ctx context.Context, c *models.Contract) error {
	next := *c
	next.Revision = c.Revision + 1
	doc, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode contract: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET document = $1, status = $2, client_id = $3, revision = revision + 1, updated_at = $4
		WHERE id = $5 AND revision = $6
		RETURNING revision
	`, r.tables.Contracts)

	executor := GetExecutor(ctx, r.pool)
	var revision int64
	err = executor.QueryRow(ctx, query,
		doc,
		string(c.Status),
		c.ClientID,
		c.UpdatedAt,
		c.ID,
		c.Revision,
	).Scan(&revision)
	if err != nil {
		if !IsPgNoRowsError(err) {
			return fmt.Errorf("put contract: %w", err)
		}
		// Either the row is gone or another writer got there first
		if _, getErr := r.GetByID(ctx, c.ID); getErr != nil {
			return getErr
		}
		return &domain.ConflictError{
			Message:      "contract was modified by someone else; reload and retry",
			ResourceType: "contract",
			ResourceID:   c.ID,
		}
	}

	c.Revision = revision
	return r.notify(ctx, c)
}

// Subscribe listens for contract changes on a dedicated connection.
// Each notice is resolved to the full current document before onChange runs.
func (r *PostgresContractRepository) Subscribe(ctx context.Context, organizationID string, onChange contractRepo.ChangeFunc, onError contractRepo.ErrorFunc) (func(), error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listener connection: %w", err)
	}
	channel := pgx.Identifier{r.tables.ChangeChannel}.Sanitize()
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen for contract changes: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			// The connection goes back to the pool, so stop listening first
			if _, err := conn.Exec(context.Background(), "UNLISTEN "+channel); err != nil {
				conn.Conn().Close(context.Background())
			}
			conn.Release()
		}()

		for {
			n, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() == nil && onError != nil {
					onError(fmt.Errorf("wait for contract change: %w", err))
				}
				return
			}

			var notice changeNotice
			if err := json.Unmarshal([]byte(n.Payload), &notice); err != nil {
				r.logger.Warn("malformed contract change notice", "payload", n.Payload, "error", err)
				continue
			}
			if notice.OrganizationID != organizationID {
				continue
			}

			c, err := r.GetByID(subCtx, notice.ID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				if subCtx.Err() == nil && onError != nil {
					onError(err)
				}
				return
			}
			onChange(c)
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	return unsubscribe, nil
}
