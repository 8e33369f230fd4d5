package contract

import (
	"context"

	models "studioflow/internal/domain/models/contract"
)

// OpenPrompt tells the signer how to capture an image field
type OpenPrompt string

const (
	PromptChoose OpenPrompt = "choose" // a saved signature exists: use it or draw new
	PromptDraw   OpenPrompt = "draw"
	PromptNone   OpenPrompt = "none" // field does not capture an image
)

// OpenFieldResult is returned when a signer opens a field
type OpenFieldResult struct {
	FieldID        string     `json:"field_id"`
	Prompt         OpenPrompt `json:"prompt"`
	SavedSignature string     `json:"saved_signature,omitempty"`
}

// FieldInput writes a response into a session field
type FieldInput struct {
	// Payload is image data for signature/initial fields and text for text fields
	Payload string `json:"payload,omitempty"`
	// Checked applies to checkbox fields
	Checked *bool `json:"checked,omitempty"`
}

// SessionState is a snapshot of a signer's in-progress session
type SessionState struct {
	ContractID    string                  `json:"contract_id"`
	PartyID       string                  `json:"party_id"`
	Fields        []models.SignatureField `json:"fields"`
	Values        map[string]string       `json:"values"`
	ActiveFieldID string                  `json:"active_field_id,omitempty"`
	Completed     int                     `json:"completed"`
	Required      int                     `json:"required"`
	CanFinish     bool                    `json:"can_finish"`
}

// SessionKey identifies a signing session
type SessionKey struct {
	ContractID string
	PartyID    string
	DeviceID   string
}

// SigningService drives per-party signing sessions and their finishing transitions
type SigningService interface {
	StartSession(ctx context.Context, key SessionKey, organizationID string) (*SessionState, error)
	GetSession(ctx context.Context, key SessionKey) (*SessionState, error)
	OpenField(ctx context.Context, key SessionKey, fieldID string) (*OpenFieldResult, error)
	SetField(ctx context.Context, key SessionKey, fieldID string, input *FieldInput) (*SessionState, error)
	CancelSession(ctx context.Context, key SessionKey) error

	// FinishSession persists the responses together with the status transition.
	// Returns models.ErrIncomplete while required fields are missing.
	FinishSession(ctx context.Context, key SessionKey, actor models.Actor) (*models.Contract, error)
}
