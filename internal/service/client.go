package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"studioflow/internal/config"
	"studioflow/internal/domain"
	"studioflow/internal/domain/models"
	"studioflow/internal/domain/repositories"
	"studioflow/internal/domain/services"
)

// clientService implements the ClientService interface
type clientService struct {
	clientRepo     repositories.ClientRepository
	staleThreshold time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// NewClientService creates a new client service.
// A non-positive threshold falls back to config.DefaultStaleClientThreshold.
func NewClientService(
	clientRepo repositories.ClientRepository,
	staleThreshold time.Duration,
	logger *slog.Logger,
) services.ClientService {
	return newClientService(clientRepo, staleThreshold, time.Now, logger)
}

func newClientService(
	clientRepo repositories.ClientRepository,
	staleThreshold time.Duration,
	now func() time.Time,
	logger *slog.Logger,
) *clientService {
	if staleThreshold <= 0 {
		staleThreshold = config.DefaultStaleClientThreshold
	}
	return &clientService{
		clientRepo:     clientRepo,
		staleThreshold: staleThreshold,
		now:            now,
		logger:         logger,
	}
}

func (s *clientService) view(c *models.Client) *models.ClientView {
	return &models.ClientView{
		Client:  *c,
		IsStale: c.IsStale(s.now(), s.staleThreshold),
	}
}

// CreateClient validates and stores a new client record
func (s *clientService) CreateClient(ctx context.Context, req *services.CreateClientRequest) (*models.ClientView, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Status == "" {
		req.Status = models.ClientLead
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxClientNameLength)),
		validation.Field(&req.Email, is.EmailFormat),
		validation.Field(&req.Status, validation.By(validClientStatus)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := s.now()
	client := &models.Client{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Email:          req.Email,
		Status:         req.Status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info("client created",
		"id", client.ID,
		"organization_id", client.OrganizationID,
		"status", client.Status,
	)
	return s.view(client), nil
}

// GetClient retrieves a client with its staleness flag
func (s *clientService) GetClient(ctx context.Context, id, organizationID string) (*models.ClientView, error) {
	client, err := s.clientRepo.Get(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	return s.view(client), nil
}

// ListClients lists an organization's clients
func (s *clientService) ListClients(ctx context.Context, organizationID string, staleOnly bool) ([]models.ClientView, error) {
	clients, err := s.clientRepo.List(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	views := make([]models.ClientView, 0, len(clients))
	for i := range clients {
		v := s.view(&clients[i])
		if staleOnly && !v.IsStale {
			continue
		}
		views = append(views, *v)
	}
	return views, nil
}

// UpdateClient applies a partial update
func (s *clientService) UpdateClient(ctx context.Context, id, organizationID string, req *services.UpdateClientRequest) (*models.ClientView, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, config.MaxClientNameLength)),
		validation.Field(&req.Email, is.EmailFormat),
		validation.Field(&req.Status, validation.By(validClientStatus)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	client, err := s.clientRepo.Get(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Email != nil {
		client.Email = strings.TrimSpace(*req.Email)
	}
	if req.Status != nil {
		client.Status = *req.Status
	}
	client.UpdatedAt = s.now()

	if err := s.clientRepo.Put(ctx, client); err != nil {
		return nil, err
	}
	return s.view(client), nil
}

// RecordContact marks the client as contacted now, which clears staleness
func (s *clientService) RecordContact(ctx context.Context, id, organizationID string) (*models.ClientView, error) {
	client, err := s.clientRepo.Get(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	client.LastContactAt = &now
	client.UpdatedAt = now
	if err := s.clientRepo.Put(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Debug("client contact recorded", "id", id)
	return s.view(client), nil
}

func validClientStatus(value interface{}) error {
	var status models.ClientStatus
	switch v := value.(type) {
	case models.ClientStatus:
		status = v
	case *models.ClientStatus:
		if v == nil {
			return nil
		}
		status = *v
	default:
		return nil
	}
	if !status.IsValid() {
		return fmt.Errorf("unknown client status %q", status)
	}
	return nil
}

// notificationService implements the NotificationService interface
type notificationService struct {
	notificationRepo repositories.NotificationRepository
	logger           *slog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	logger *slog.Logger,
) services.NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// ListNotifications returns notifications newest first
func (s *notificationService) ListNotifications(ctx context.Context, organizationID string, unreadOnly bool) ([]models.Notification, error) {
	return s.notificationRepo.List(ctx, organizationID, unreadOnly)
}

// MarkRead flags one notification as read
func (s *notificationService) MarkRead(ctx context.Context, id, organizationID string) error {
	if err := s.notificationRepo.MarkRead(ctx, id, organizationID); err != nil {
		return err
	}
	s.logger.Debug("notification read", "id", id)
	return nil
}
