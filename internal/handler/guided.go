package handler

import (
	"log/slog"
	"net/http"

	"studioflow/internal/domain/services/guided"
	"studioflow/internal/httputil"
)

// GuidedHandler exposes the guided contract builder
type GuidedHandler struct {
	guided guided.GuidedService
	logger *slog.Logger
}

// NewGuidedHandler creates a new guided-build handler
func NewGuidedHandler(svc guided.GuidedService, logger *slog.Logger) *GuidedHandler {
	return &GuidedHandler{
		guided: svc,
		logger: logger,
	}
}

// SubmitRequest is one line typed by the provider
type SubmitRequest struct {
	Input string `json:"input"`
}

// StartSession begins a guided build
// POST /api/guided
func (h *GuidedHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.guided.StartSession(r.Context(), httputil.GetOrganizationID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, view)
}

// GetSession returns the current conversation state
// GET /api/guided/{id}
func (h *GuidedHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	view, err := h.guided.GetSession(r.Context(), id, httputil.GetOrganizationID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, view)
}

// Submit answers the current question or runs an addon command
// POST /api/guided/{id}/answers
func (h *GuidedHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	var req SubmitRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.guided.Submit(r.Context(), id, httputil.GetOrganizationID(r), req.Input)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, view)
}

// Undo steps back one answer
// POST /api/guided/{id}/undo
func (h *GuidedHandler) Undo(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	view, err := h.guided.Undo(r.Context(), id, httputil.GetOrganizationID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, view)
}

// Redo re-applies an undone answer
// POST /api/guided/{id}/redo
func (h *GuidedHandler) Redo(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	view, err := h.guided.Redo(r.Context(), id, httputil.GetOrganizationID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, view)
}

// SuggestAnswers returns up to three AI answer suggestions; blanks mean none
// GET /api/guided/{id}/suggestions
func (h *GuidedHandler) SuggestAnswers(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	suggestions, err := h.guided.SuggestAnswers(r.Context(), id, httputil.GetOrganizationID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

// Complete turns the reviewed answers into a draft contract
// POST /api/guided/{id}/complete
func (h *GuidedHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	var req guided.CompleteRequest
	if err := httputil.ParseOptionalJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	contract, err := h.guided.Complete(r.Context(), id, httputil.GetOrganizationID(r), &req, providerActor(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, contract)
}

// Abandon discards a guided build
// DELETE /api/guided/{id}
func (h *GuidedHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	if err := h.guided.Abandon(r.Context(), id, httputil.GetOrganizationID(r)); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondNoContent(w)
}
