package handler

import (
	"errors"
	"net/http"

	"studioflow/internal/domain"
	contractModels "studioflow/internal/domain/models/contract"
	"studioflow/internal/httputil"
)

// canvasRetryAfterMS is how long a client waits for the document to settle
// before retrying field placement
const canvasRetryAfterMS = 300

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError

	switch {
	case errors.Is(err, contractModels.ErrCanvasNotReady):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, err.Error(), map[string]interface{}{
			"retry_after_ms": canvasRetryAfterMS,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error, please retry")
	}
}

// PathParam reads a required path segment, writing a 400 when it is missing
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	return value, true
}

// providerActor builds the audit actor for the authenticated provider
func providerActor(r *http.Request) contractModels.Actor {
	p, _ := httputil.GetPrincipal(r)
	return contractModels.Actor{
		Role:      contractModels.RoleProvider,
		UserID:    p.UserID,
		Name:      p.Name,
		Email:     p.Email,
		IP:        httputil.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// signerActor builds the audit actor for a signing-link holder
func signerActor(r *http.Request) contractModels.Actor {
	actor := contractModels.Actor{
		Role:      contractModels.RoleClient,
		IP:        httputil.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
	if claims := httputil.GetSigner(r); claims != nil {
		actor.PartyID = claims.PartyID
	}
	return actor
}

// deviceID identifies the signer's device for the local signature cache
func deviceID(r *http.Request) string {
	return r.Header.Get("X-Device-ID")
}
