package auth

import (
	"context"
	"errors"
	"fmt"

	"studioflow/internal/domain"
	"studioflow/internal/domain/models"
	contractModels "studioflow/internal/domain/models/contract"
	contractRepo "studioflow/internal/domain/repositories/contract"
)

// LinkAuthorizer implements SignerAuthorizer against the contract store.
// A link is valid while its party is still a non-provider party of the
// contract and the contract has not been archived.
type LinkAuthorizer struct {
	contracts contractRepo.ContractRepository
}

// NewLinkAuthorizer creates a new signing-link authorizer
func NewLinkAuthorizer(contracts contractRepo.ContractRepository) *LinkAuthorizer {
	return &LinkAuthorizer{contracts: contracts}
}

// CanIssueLink checks the contract is waiting on this party
func (a *LinkAuthorizer) CanIssueLink(ctx context.Context, organizationID, contractID, partyID string) error {
	c, err := a.contracts.Get(ctx, contractID, organizationID)
	if err != nil {
		return fmt.Errorf("get contract for link: %w", err)
	}

	if err := signerParty(c, partyID); err != nil {
		return err
	}

	if !contractModels.CanPerform(c.Status, contractModels.ActionView) {
		return fmt.Errorf("%w: contract is %s", contractModels.ErrInvalidTransition, c.Status)
	}
	return nil
}

// CanAccessContract checks a presented link against the current contract
func (a *LinkAuthorizer) CanAccessContract(ctx context.Context, claims *models.SignerClaims, contractID string) error {
	if claims == nil {
		return domain.ErrUnauthorized
	}
	if err := claims.Authorize(contractID); err != nil {
		return err
	}

	c, err := a.contracts.GetByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("access denied to contract %s: %w", contractID, domain.ErrForbidden)
		}
		return fmt.Errorf("get contract for auth: %w", err)
	}

	if c.Status == contractModels.StatusArchived {
		return fmt.Errorf("access denied to contract %s: %w", contractID, domain.ErrForbidden)
	}

	// Parties can be replaced by a duplicate or edit; an old link then stops working
	if err := signerParty(c, claims.PartyID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("access denied to contract %s: %w", contractID, domain.ErrForbidden)
		}
		return err
	}
	return nil
}

func signerParty(c *contractModels.Contract, partyID string) error {
	party, ok := c.Party(partyID)
	if !ok {
		return fmt.Errorf("%w: %s", contractModels.ErrPartyNotFound, partyID)
	}
	if party.Role == contractModels.RoleProvider {
		return fmt.Errorf("%w: the provider signs from the dashboard", domain.ErrValidation)
	}
	return nil
}
