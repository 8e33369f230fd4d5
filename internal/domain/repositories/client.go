package repositories

import (
	"context"

	"studioflow/internal/domain/models"
)

// ClientRepository defines data access for client records
type ClientRepository interface {
	// Create inserts a client and returns it with generated ID
	Create(ctx context.Context, client *models.Client) error

	// Get retrieves a client by ID within an organization
	Get(ctx context.Context, id, organizationID string) (*models.Client, error)

	// List retrieves an organization's clients ordered by name
	List(ctx context.Context, organizationID string) ([]models.Client, error)

	// Put replaces the stored client record
	Put(ctx context.Context, client *models.Client) error
}
