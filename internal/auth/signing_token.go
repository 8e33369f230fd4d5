package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studioflow/internal/domain"
	"studioflow/internal/domain/models"
)

const signerIssuer = "studioflow-sign"

// HMACSignerTokens mints HS256 signing-link tokens. A token grants one party
// access to one contract until it expires.
type HMACSignerTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignerTokens creates the signing-link token issuer
func NewSignerTokens(secret string, ttl time.Duration) (*HMACSignerTokens, error) {
	if len(secret) < 32 {
		return nil, errors.New("signing token secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		return nil, errors.New("signer link TTL must be positive")
	}
	return &HMACSignerTokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for one contract party
func (t *HMACSignerTokens) Issue(contractID, partyID string) (string, error) {
	if contractID == "" || partyID == "" {
		return "", fmt.Errorf("%w: contract and party are required", domain.ErrValidation)
	}
	now := t.now()
	claims := models.SignerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    signerIssuer,
			Subject:   partyID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		ContractID: contractID,
		PartyID:    partyID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign signer token: %w", err)
	}
	return signed, nil
}

// Verify parses a signing-link token. Any failure is ErrUnauthorized.
func (t *HMACSignerTokens) Verify(tokenString string) (*models.SignerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SignerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(signerIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.SignerClaims)
	if !ok || claims.ContractID == "" || claims.PartyID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
