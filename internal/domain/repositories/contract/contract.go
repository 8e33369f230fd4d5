package contract

import (
	"context"

	models "studioflow/internal/domain/models/contract"
)

// ChangeFunc receives the full document of a contract that changed
type ChangeFunc func(c *models.Contract)

// ErrorFunc receives subscription failures; the subscription ends after it is called
type ErrorFunc func(err error)

// ContractRepository is the document store for contracts.
// Writes replace the whole document; there is no partial-field patch.
type ContractRepository interface {
	// Create inserts a new contract document and sets its revision
	Create(ctx context.Context, c *models.Contract) error

	// Get retrieves a contract by ID within an organization
	Get(ctx context.Context, id, organizationID string) (*models.Contract, error)

	// GetByID retrieves a contract by ID regardless of organization.
	// Used for signer-link access where the token already scopes the contract.
	GetByID(ctx context.Context, id string) (*models.Contract, error)

	// List retrieves an organization's contracts, most recently updated first
	List(ctx context.Context, organizationID string) ([]models.Contract, error)

	// Put replaces the stored document. It fails with domain.ErrConflict when the
	// stored revision no longer matches c.Revision, and bumps c.Revision on success.
	Put(ctx context.Context, c *models.Contract) error

	// Subscribe streams whole-document changes for an organization's contracts until
	// the returned unsubscribe function is called or ctx ends
	Subscribe(ctx context.Context, organizationID string, onChange ChangeFunc, onError ErrorFunc) (unsubscribe func(), err error)
}
