package httputil

import (
	"context"
	"net/http"
	"strings"

	"studioflow/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	principalKey contextKey = "principal"
	signerKey    contextKey = "signer"
)

// Principal is the authenticated provider behind a request
type Principal struct {
	UserID         string
	OrganizationID string
	Name           string
	Email          string
}

// WithPrincipal adds the provider principal to the request context
func WithPrincipal(r *http.Request, p Principal) *http.Request {
	ctx := context.WithValue(r.Context(), principalKey, p)
	return r.WithContext(ctx)
}

// GetPrincipal retrieves the provider principal; ok is false on signer routes
func GetPrincipal(r *http.Request) (Principal, bool) {
	p, ok := r.Context().Value(principalKey).(Principal)
	return p, ok
}

// GetUserID retrieves the provider's user ID, returns empty string if not found
func GetUserID(r *http.Request) string {
	p, _ := GetPrincipal(r)
	return p.UserID
}

// GetOrganizationID retrieves the organization that scopes every provider query
func GetOrganizationID(r *http.Request) string {
	p, _ := GetPrincipal(r)
	return p.OrganizationID
}

// WithSigner adds verified signing-link claims to the request context
func WithSigner(r *http.Request, claims *models.SignerClaims) *http.Request {
	ctx := context.WithValue(r.Context(), signerKey, claims)
	return r.WithContext(ctx)
}

// GetSigner retrieves signing-link claims, nil when absent
func GetSigner(r *http.Request) *models.SignerClaims {
	claims, _ := r.Context().Value(signerKey).(*models.SignerClaims)
	return claims
}

// ClientIP returns the caller address, preferring the first proxy hop
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
