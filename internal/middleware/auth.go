package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"studioflow/internal/auth"
	"studioflow/internal/domain"
	"studioflow/internal/httputil"
)

// signerPrefix marks the routes a signing-link holder may call
const signerPrefix = "/api/sign/"

// AuthMiddleware authenticates every /api request. Signer routes take a
// signing-link token; everything else takes a provider session token.
func AuthMiddleware(verifier auth.JWTVerifier, signers auth.SignerTokens, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r)
			if token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing or invalid token")
				return
			}

			if strings.HasPrefix(r.URL.Path, signerPrefix) {
				claims, err := signers.Verify(token)
				if err != nil {
					respondAuthError(w, err)
					return
				}
				next.ServeHTTP(w, httputil.WithSigner(r, claims))
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("provider token rejected", "path", r.URL.Path, "error", err)
				respondAuthError(w, err)
				return
			}

			next.ServeHTTP(w, httputil.WithPrincipal(r, httputil.Principal{
				UserID:         claims.GetUserID(),
				OrganizationID: claims.GetOrganizationID(),
				Name:           claims.GetName(),
				Email:          claims.Email,
			}))
		})
	}
}

// extractToken reads the bearer token, falling back to ?token= for EventSource
// connections and signing links opened from email
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return r.URL.Query().Get("token")
}

func respondAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrForbidden) {
		httputil.RespondError(w, http.StatusForbidden, "forbidden")
		return
	}
	httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
}
