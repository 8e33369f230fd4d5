package contract

import (
	"time"
)

// PartyRole identifies which side of the agreement a party signs for
type PartyRole string

const (
	RoleProvider PartyRole = "provider" // our side; exactly one per contract
	RoleClient   PartyRole = "client"
	RoleWitness  PartyRole = "witness"
)

// IsValid reports whether the role is one of the known roles
func (r PartyRole) IsValid() bool {
	switch r {
	case RoleProvider, RoleClient, RoleWitness:
		return true
	}
	return false
}

// Party is a named signer on a contract
type Party struct {
	ID    string    `json:"id"`
	Role  PartyRole `json:"role"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// RevisionRequest is a client's "request changes" message
type RevisionRequest struct {
	PartyID   string    `json:"party_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Contract is the central entity. It is stored and replaced as a whole document.
type Contract struct {
	ID               string            `json:"id"`
	OrganizationID   string            `json:"organization_id"`
	ClientID         string            `json:"client_id"`
	Title            string            `json:"title"`
	Body             string            `json:"body"`
	Status           Status            `json:"status"`
	Version          int               `json:"version"`
	Parties          []Party           `json:"parties"`
	Variables        Variables         `json:"variables"`
	SignatureFields  []SignatureField  `json:"signature_fields"`
	FieldValues      map[string]string `json:"field_values"`
	AuditTrail       []AuditEvent      `json:"audit_trail"`
	History          []ContractVersion `json:"history"`
	RevisionRequests []RevisionRequest `json:"revision_requests"`
	ExpiresAt        *time.Time        `json:"expires_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`

	// Revision is the storage stamp used for optimistic concurrency.
	// It is owned by the repository and is unrelated to Version.
	Revision int64 `json:"revision"`
}

// ProviderParty returns the party flagged as our side
func (c *Contract) ProviderParty() (*Party, bool) {
	for i := range c.Parties {
		if c.Parties[i].Role == RoleProvider {
			return &c.Parties[i], true
		}
	}
	return nil, false
}

// Party finds a party by ID
func (c *Contract) Party(id string) (*Party, bool) {
	for i := range c.Parties {
		if c.Parties[i].ID == id {
			return &c.Parties[i], true
		}
	}
	return nil, false
}

// Field finds a placed signature field by ID
func (c *Contract) Field(id string) (*SignatureField, bool) {
	for i := range c.SignatureFields {
		if c.SignatureFields[i].ID == id {
			return &c.SignatureFields[i], true
		}
	}
	return nil, false
}

// FieldsForParty returns the fields owned by a party, in placement order
func (c *Contract) FieldsForParty(partyID string) []SignatureField {
	var fields []SignatureField
	for _, f := range c.SignatureFields {
		if f.PartyID == partyID {
			fields = append(fields, f)
		}
	}
	return fields
}

// IsEditable reports whether variables and body may still change
func (c *Contract) IsEditable() bool {
	return c.Status.IsEditable()
}

// PartyComplete reports whether every required field of the party has a response.
// A party with no required fields is complete.
func (c *Contract) PartyComplete(partyID string) bool {
	filled, required := CompletionCount(c.FieldsForParty(partyID), c.FieldValues)
	return filled == required
}

// MergeFieldValues merges responses into FieldValues; later writes win per field
func (c *Contract) MergeFieldValues(values map[string]string) {
	if c.FieldValues == nil {
		c.FieldValues = make(map[string]string, len(values))
	}
	for id, v := range values {
		if v == "" {
			delete(c.FieldValues, id)
			continue
		}
		c.FieldValues[id] = v
	}
}

// RenderableValues returns only the responses whose field still exists.
// Orphaned responses are kept in storage but never rendered.
func (c *Contract) RenderableValues() map[string]string {
	out := make(map[string]string, len(c.FieldValues))
	for id, v := range c.FieldValues {
		if _, ok := c.Field(id); ok {
			out[id] = v
		}
	}
	return out
}

// AppendAudit appends an event to the audit trail
func (c *Contract) AppendAudit(event AuditEvent) {
	c.AuditTrail = append(c.AuditTrail, event)
}

// AppendHistory appends an immutable snapshot to the version history
func (c *Contract) AppendHistory(v ContractVersion) {
	c.History = append(c.History, v)
}

// HistoryVersion locates the snapshot recorded for a version number.
// Each number is recorded at most once.
func (c *Contract) HistoryVersion(version int) (*ContractVersion, bool) {
	for i := range c.History {
		if c.History[i].Version == version {
			return &c.History[i], true
		}
	}
	return nil, false
}

// LatestVersion is the highest version number in use, live or recorded
func (c *Contract) LatestVersion() int {
	latest := c.Version
	for _, v := range c.History {
		if v.Version > latest {
			latest = v.Version
		}
	}
	return latest
}

// IsExpiredAt is a passive check against ExpiresAt; it never changes status
func (c *Contract) IsExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
