package contract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"studioflow/internal/domain"
	"studioflow/internal/domain/models"
	contractModels "studioflow/internal/domain/models/contract"
	"studioflow/internal/domain/repositories"
	contractRepo "studioflow/internal/domain/repositories/contract"
)

// effect is a side effect written in the same transaction as the contract
type effect func(ctx context.Context) error

// store writes a contract and its side effects atomically.
// Shared by the contract, version and signing services.
type store struct {
	contracts     contractRepo.ContractRepository
	clients       repositories.ClientRepository
	notifications repositories.NotificationRepository
	work          repositories.UnitOfWork
	now           func() time.Time
	logger        *slog.Logger
}

// save replaces the contract document and runs effects in one transaction
func (s *store) save(ctx context.Context, c *contractModels.Contract, effects ...effect) error {
	revision := c.Revision
	err := s.work.Do(ctx, func(txCtx context.Context) error {
		if err := s.contracts.Put(txCtx, c); err != nil {
			return err
		}
		for _, fn := range effects {
			if err := fn(txCtx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Put bumps the in-memory revision before a later step can fail
		c.Revision = revision
		s.logger.Error("contract write failed",
			"contract_id", c.ID,
			"status", c.Status,
			"error", err,
		)
		return err
	}
	return nil
}

// load fetches a contract, scoped to an organization when one is given
func (s *store) load(ctx context.Context, id, organizationID string) (*contractModels.Contract, error) {
	if organizationID == "" {
		return s.contracts.GetByID(ctx, id)
	}
	return s.contracts.Get(ctx, id, organizationID)
}

// notify raises a provider notification about a contract
func (s *store) notify(c *contractModels.Contract, kind, title, message string) effect {
	return func(ctx context.Context) error {
		if s.notifications == nil {
			return nil
		}
		contractID := c.ID
		n := &models.Notification{
			OrganizationID:    c.OrganizationID,
			Type:              kind,
			Title:             title,
			Message:           message,
			RelatedContractID: &contractID,
			IsRead:            false,
			CreatedAt:         s.now(),
		}
		if c.ClientID != "" {
			clientID := c.ClientID
			n.RelatedClientID = &clientID
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		return nil
	}
}

// markClientHot moves the contract's client record to hot.
// A contract without a resolvable client record is left alone.
func (s *store) markClientHot(c *contractModels.Contract) effect {
	return func(ctx context.Context) error {
		if s.clients == nil || c.ClientID == "" {
			return nil
		}
		client, err := s.clients.Get(ctx, c.ClientID, c.OrganizationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn("completed contract has no client record",
					"contract_id", c.ID,
					"client_id", c.ClientID,
				)
				return nil
			}
			return fmt.Errorf("load client: %w", err)
		}

		now := s.now()
		client.Status = models.ClientHot
		client.LastContactAt = &now
		client.UpdatedAt = now
		if err := s.clients.Put(ctx, client); err != nil {
			return fmt.Errorf("mark client hot: %w", err)
		}
		return nil
	}
}

// partyName returns a display name for notifications
func partyName(c *contractModels.Contract, partyID string) string {
	if p, ok := c.Party(partyID); ok && p.Name != "" {
		return p.Name
	}
	return "A client"
}
