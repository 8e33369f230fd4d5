package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"studioflow/internal/domain"
	"studioflow/internal/domain/models"
	"studioflow/internal/domain/repositories"
)

// PostgresClientRepository implements the ClientRepository interface
type PostgresClientRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewClientRepository creates a new client repository
func NewClientRepository(config *RepositoryConfig) repositories.ClientRepository {
	return &PostgresClientRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new client
func (r *PostgresClientRepository) Create(ctx context.Context, client *models.Client) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (organization_id, name, email, status, last_contact_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Clients)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		client.OrganizationID,
		client.Name,
		client.Email,
		string(client.Status),
		client.LastContactAt,
		client.CreatedAt,
		client.UpdatedAt,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	return nil
}

const clientColumns = "id, organization_id, name, email, status, last_contact_at, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var (
		client models.Client
		status string
	)
	err := row.Scan(
		&client.ID,
		&client.OrganizationID,
		&client.Name,
		&client.Email,
		&status,
		&client.LastContactAt,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	client.Status = models.ClientStatus(status)
	return &client, nil
}

// Get retrieves a client by ID
func (r *PostgresClientRepository) Get(ctx context.Context, id, organizationID string) (*models.Client, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND organization_id = $2
	`, clientColumns, r.tables.Clients)

	executor := GetExecutor(ctx, r.pool)
	client, err := scanClient(executor.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		return nil, notFoundOr(err, "client", id, "get client")
	}
	return client, nil
}

// List retrieves an organization's clients ordered by name
func (r *PostgresClientRepository) List(ctx context.Context, organizationID string) ([]models.Client, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE organization_id = $1
		ORDER BY name ASC
	`, clientColumns, r.tables.Clients)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}

	return clients, nil
}

// Put replaces the stored client record
func (r *PostgresClientRepository) Put(ctx context.Context, client *models.Client) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, email = $2, status = $3, last_contact_at = $4, updated_at = $5
		WHERE id = $6 AND organization_id = $7
	`, r.tables.Clients)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		client.Name,
		client.Email,
		string(client.Status),
		client.LastContactAt,
		client.UpdatedAt,
		client.ID,
		client.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("put client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", client.ID, domain.ErrNotFound)
	}

	return nil
}
