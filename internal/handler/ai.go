package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"studioflow/internal/domain/services"
	"studioflow/internal/httputil"
)

// AIHandler serves generative text suggestions
type AIHandler struct {
	suggester services.TextSuggester
	logger    *slog.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(suggester services.TextSuggester, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		suggester: suggester,
		logger:    logger,
	}
}

// ClauseRequest describes the clause the provider wants drafted
type ClauseRequest struct {
	Prompt string `json:"prompt"`
}

// SuggestClause drafts a contract clause. An empty clause means the AI is unavailable.
// POST /api/ai/clauses
func (h *AIHandler) SuggestClause(w http.ResponseWriter, r *http.Request) {
	var req ClauseRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		httputil.RespondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	clause := h.suggester.SuggestClause(r.Context(), prompt)
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"clause":    clause,
		"available": clause != "",
	})
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
