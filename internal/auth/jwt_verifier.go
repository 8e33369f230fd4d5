package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"studioflow/internal/domain"
	"studioflow/internal/domain/models"
)

// providerRole is the Supabase role of a signed-in provider; anon keys carry "anon"
const providerRole = "authenticated"

// JWKSVerifier checks provider access tokens against the Supabase key set.
// Signer links never reach it; they carry HS256 tokens of our own.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewJWTVerifier fetches the key set once and keeps refreshing it in the
// background until Close or until ctx ends
func NewJWTVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	refreshCtx, cancel := context.WithCancel(ctx)
	jwks, err := keyfunc.NewDefaultCtx(refreshCtx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load JWKS: %w", err)
	}

	logger.Info("provider token verifier ready", "jwks_url", jwksURL)
	return &JWKSVerifier{jwks: jwks, cancel: cancel, logger: logger}, nil
}

// VerifyToken returns the provider's claims. Any failure is domain.ErrUnauthorized.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.SupabaseClaims, error) {
	claims := &models.SupabaseClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("provider token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("provider token has no subject")
		return nil, domain.ErrUnauthorized
	}
	if claims.Role != providerRole {
		v.logger.Warn("provider token has wrong role", "role", claims.Role, "user_id", claims.Subject)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close stops the key refresh goroutine
func (v *JWKSVerifier) Close() error {
	v.cancel()
	return nil
}
