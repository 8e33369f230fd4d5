package contract

import (
	"time"

	"github.com/google/uuid"
)

// AuditEventType names a significant lifecycle action
type AuditEventType string

const (
	EventCreated           AuditEventType = "created"
	EventFieldsPlaced      AuditEventType = "fields_placed"
	EventSigned            AuditEventType = "signed"
	EventSent              AuditEventType = "sent"
	EventViewed            AuditEventType = "viewed"
	EventRevisionRequested AuditEventType = "revision_requested"
	EventDeclined          AuditEventType = "declined"
	EventExpired           AuditEventType = "expired"
	EventArchived          AuditEventType = "archived"
	EventUnarchived        AuditEventType = "unarchived"
	EventRestored          AuditEventType = "restored"
	EventVariablesUpdated  AuditEventType = "variables_updated"
)

// Actor describes who triggered an action and from where
type Actor struct {
	Role      PartyRole `json:"role"`
	PartyID   string    `json:"party_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	IP        string    `json:"-"`
	UserAgent string    `json:"-"`
}

// IsProvider reports whether the actor acts for our side
func (a Actor) IsProvider() bool {
	return a.Role == RoleProvider
}

// AuditEvent is an immutable record appended to a contract's audit trail
type AuditEvent struct {
	ID        string                 `json:"id"`
	EventType AuditEventType         `json:"event_type"`
	CreatedAt time.Time              `json:"created_at"`
	Actor     Actor                  `json:"actor"`
	IP        string                 `json:"ip,omitempty"`
	UserAgent string                 `json:"user_agent,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewAuditEvent mints an event for the given actor
func NewAuditEvent(eventType AuditEventType, actor Actor, at time.Time, metadata map[string]interface{}) AuditEvent {
	return AuditEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		CreatedAt: at,
		Actor:     actor,
		IP:        actor.IP,
		UserAgent: actor.UserAgent,
		Metadata:  metadata,
	}
}
