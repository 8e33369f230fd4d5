package services

import (
	"context"

	"studioflow/internal/domain/models"
)

// CreateClientRequest represents a request to add a client record
type CreateClientRequest struct {
	OrganizationID string              `json:"-"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	Status         models.ClientStatus `json:"status,omitempty"`
}

// UpdateClientRequest is a partial update; nil fields are left unchanged
type UpdateClientRequest struct {
	Name   *string              `json:"name,omitempty"`
	Email  *string              `json:"email,omitempty"`
	Status *models.ClientStatus `json:"status,omitempty"`
}

// ClientService defines business logic for client records.
// Staleness is computed on read and never stored.
type ClientService interface {
	CreateClient(ctx context.Context, req *CreateClientRequest) (*models.ClientView, error)
	GetClient(ctx context.Context, id, organizationID string) (*models.ClientView, error)

	// ListClients returns clients ordered by name; staleOnly keeps only stale ones
	ListClients(ctx context.Context, organizationID string, staleOnly bool) ([]models.ClientView, error)

	UpdateClient(ctx context.Context, id, organizationID string, req *UpdateClientRequest) (*models.ClientView, error)

	// RecordContact stamps last_contact_at with the current time
	RecordContact(ctx context.Context, id, organizationID string) (*models.ClientView, error)
}

// NotificationService exposes the provider's in-app notifications
type NotificationService interface {
	ListNotifications(ctx context.Context, organizationID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, organizationID string) error
}
