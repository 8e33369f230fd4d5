package models

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"studioflow/internal/domain"
)

// SupabaseClaims represents the JWT claims structure from Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims                        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string                 `json:"email"`
	AppMetadata          map[string]interface{} `json:"app_metadata"`
	UserMetadata         map[string]interface{} `json:"user_metadata"`
	Role                 string                 `json:"role"` // "authenticated" or "anon"
	SessionID            string                 `json:"session_id"`
	IsAnonymous          bool                   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}

// GetOrganizationID returns app_metadata.organization_id.
// A solo provider without an organization owns its data directly, so the user ID is used.
func (c *SupabaseClaims) GetOrganizationID() string {
	if org, ok := c.AppMetadata["organization_id"].(string); ok && org != "" {
		return org
	}
	return c.Subject
}

// GetName returns the display name from user metadata, if any
func (c *SupabaseClaims) GetName() string {
	for _, key := range []string{"full_name", "name"} {
		if name, ok := c.UserMetadata[key].(string); ok && name != "" {
			return name
		}
	}
	return ""
}

// SignerClaims grant one contract party access to one contract through a signing link
type SignerClaims struct {
	jwt.RegisteredClaims
	ContractID string `json:"contract_id"`
	PartyID    string `json:"party_id"`
}

// Authorize checks that the link was issued for the given contract
func (c *SignerClaims) Authorize(contractID string) error {
	if c.ContractID != contractID {
		return fmt.Errorf("%w: signing link is for another contract", domain.ErrForbidden)
	}
	return nil
}
