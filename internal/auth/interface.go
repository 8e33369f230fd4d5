package auth

import "studioflow/internal/domain/models"

// JWTVerifier authenticates the provider on dashboard routes
type JWTVerifier interface {
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)
	Close() error
}

// SignerTokens issues and checks signing-link tokens. A token names one
// contract and one party and grants nothing else.
type SignerTokens interface {
	Issue(contractID, partyID string) (string, error)
	Verify(tokenString string) (*models.SignerClaims, error)
}
