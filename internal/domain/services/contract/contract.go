package contract

import (
	"context"
	"time"

	models "studioflow/internal/domain/models/contract"
	repo "studioflow/internal/domain/repositories/contract"
)

// PartyInput describes a party when creating a contract
type PartyInput struct {
	Role  models.PartyRole `json:"role"`
	Name  string           `json:"name"`
	Email string           `json:"email"`
}

// CreateContractRequest represents a request to create a draft contract
type CreateContractRequest struct {
	OrganizationID string           `json:"-"`
	ClientID       string           `json:"client_id"`
	Title          string           `json:"title"`
	Body           string           `json:"body"`
	Parties        []PartyInput     `json:"parties"`
	Variables      models.Variables `json:"variables"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

// UpdateVariablesRequest replaces the variable set of an editable contract
type UpdateVariablesRequest struct {
	Variables models.Variables `json:"variables"`
}

// MarkerInput is a placeholder located in the rendered document
type MarkerInput struct {
	PartyID  string  `json:"party_id"`
	Kind     string  `json:"kind"`
	Page     int     `json:"page"`
	Left     float64 `json:"left"`
	LineTop  float64 `json:"line_top"`
	Optional bool    `json:"optional,omitempty"`
}

// PrepareRequest carries the text-flow metrics of the rendered document
type PrepareRequest struct {
	LineHeight   float64       `json:"line_height"`
	CanvasWidth  float64       `json:"canvas_width"`
	CanvasHeight float64       `json:"canvas_height"`
	Markers      []MarkerInput `json:"markers"`
}

// UnarchiveRequest selects the status to return to; empty means draft
type UnarchiveRequest struct {
	TargetStatus models.Status `json:"target_status,omitempty"`
}

// RequestChangesRequest is a client's revision request
type RequestChangesRequest struct {
	Message string `json:"message"`
}

// DeclineRequest is a client's refusal to sign
type DeclineRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RenderedContract is a contract with its body rendered against its variables
type RenderedContract struct {
	*models.Contract
	RenderedBody string            `json:"rendered_body"`
	Markers      []models.Marker   `json:"markers"`
	FieldValues  map[string]string `json:"field_values"`
}

// ContractService defines business logic for contracts and their lifecycle
type ContractService interface {
	CreateContract(ctx context.Context, req *CreateContractRequest, actor models.Actor) (*models.Contract, error)
	GetContract(ctx context.Context, id, organizationID string) (*models.Contract, error)
	ListContracts(ctx context.Context, organizationID string) ([]models.Contract, error)

	// RenderContract returns the contract with its body rendered and markers extracted
	RenderContract(ctx context.Context, id, organizationID string) (*RenderedContract, error)

	UpdateVariables(ctx context.Context, id, organizationID string, req *UpdateVariablesRequest, actor models.Actor) (*models.Contract, error)

	// PrepareFields runs field placement for a draft. Returns models.ErrCanvasNotReady when
	// the layout has no canvas; the caller retries after the document settles.
	PrepareFields(ctx context.Context, id, organizationID string, req *PrepareRequest, actor models.Actor) (*models.Contract, error)

	Archive(ctx context.Context, id, organizationID string, actor models.Actor) (*models.Contract, error)
	Unarchive(ctx context.Context, id, organizationID string, req *UnarchiveRequest, actor models.Actor) (*models.Contract, error)
	Expire(ctx context.Context, id, organizationID string, actor models.Actor) (*models.Contract, error)
	Duplicate(ctx context.Context, id, organizationID string, actor models.Actor) (*models.Contract, error)

	// Client-side actions, scoped by a signer link
	OpenForSigner(ctx context.Context, contractID, partyID string, actor models.Actor) (*RenderedContract, error)
	RequestChanges(ctx context.Context, contractID, partyID string, req *RequestChangesRequest, actor models.Actor) (*models.Contract, error)
	Decline(ctx context.Context, contractID, partyID string, req *DeclineRequest, actor models.Actor) (*models.Contract, error)

	// Subscribe streams whole-document changes for an organization
	Subscribe(ctx context.Context, organizationID string, onChange repo.ChangeFunc, onError repo.ErrorFunc) (func(), error)
}
