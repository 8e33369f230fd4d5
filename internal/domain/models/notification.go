package models

import "time"

// Notification types raised by the contract workflow
const (
	NotificationRevisionRequested = "contract_revision_requested"
	NotificationContractSigned    = "contract_signed"
	NotificationContractDeclined  = "contract_declined"
)

// Notification is an in-app message for the provider
type Notification struct {
	ID                string    `json:"id" db:"id"`
	OrganizationID    string    `json:"organization_id" db:"organization_id"`
	Type              string    `json:"type" db:"type"`
	Title             string    `json:"title" db:"title"`
	Message           string    `json:"message" db:"message"`
	RelatedClientID   *string   `json:"related_client_id,omitempty" db:"related_client_id"`
	RelatedContractID *string   `json:"related_contract_id,omitempty" db:"related_contract_id"`
	IsRead            bool      `json:"is_read" db:"is_read"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
