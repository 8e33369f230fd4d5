package services

import (
	"context"

	"studioflow/internal/domain/models"
)

// SignerAuthorizer decides who may hold and use a signing link.
// Provider routes are scoped by organization in every query; signer routes
// carry no organization, so the link itself is checked here.
type SignerAuthorizer interface {
	// CanIssueLink checks that the party is a signer of a contract awaiting signatures
	CanIssueLink(ctx context.Context, organizationID, contractID, partyID string) error

	// CanAccessContract checks that the link's claims still grant access to the contract
	CanAccessContract(ctx context.Context, claims *models.SignerClaims, contractID string) error
}
