package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"studioflow/internal/auth"
	contractModels "studioflow/internal/domain/models/contract"
	"studioflow/internal/domain/services"
	contractSvc "studioflow/internal/domain/services/contract"
	"studioflow/internal/httputil"
)

// SigningHandler drives signing sessions for the provider and for signing-link holders
type SigningHandler struct {
	contracts  contractSvc.ContractService
	signing    contractSvc.SigningService
	authorizer services.SignerAuthorizer
	tokens     auth.SignerTokens
	publicURL  string
	logger     *slog.Logger
}

// NewSigningHandler creates a new signing handler
func NewSigningHandler(
	contracts contractSvc.ContractService,
	signing contractSvc.SigningService,
	authorizer services.SignerAuthorizer,
	tokens auth.SignerTokens,
	publicURL string,
	logger *slog.Logger,
) *SigningHandler {
	return &SigningHandler{
		contracts:  contracts,
		signing:    signing,
		authorizer: authorizer,
		tokens:     tokens,
		publicURL:  strings.TrimRight(publicURL, "/"),
		logger:     logger,
	}
}

// IssueLinkRequest selects the party a signing link is for
type IssueLinkRequest struct {
	PartyID string `json:"party_id"`
}

// SigningLink is a token plus the URL a client opens to sign
type SigningLink struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// IssueLink mints a signing link for a client party
// POST /api/contracts/{id}/links
func (h *SigningHandler) IssueLink(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return
	}

	var req IssueLinkRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PartyID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "party_id is required")
		return
	}

	if err := h.authorizer.CanIssueLink(r.Context(), httputil.GetOrganizationID(r), id, req.PartyID); err != nil {
		handleError(w, err)
		return
	}

	token, err := h.tokens.Issue(id, req.PartyID)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("signing link issued", "contract_id", id, "party_id", req.PartyID)
	httputil.RespondJSON(w, http.StatusCreated, SigningLink{
		Token: token,
		URL:   h.publicURL + "/sign/" + url.PathEscape(id) + "?token=" + url.QueryEscape(token),
	})
}

// providerKey resolves the session key for the provider's own routes. The
// session belongs to the provider party unless ?party_id= names another party
// of the contract, which lets a client sign in person on the provider's device.
func (h *SigningHandler) providerKey(w http.ResponseWriter, r *http.Request) (contractSvc.SessionKey, bool) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return contractSvc.SessionKey{}, false
	}

	contract, err := h.contracts.GetContract(r.Context(), id, httputil.GetOrganizationID(r))
	if err != nil {
		handleError(w, err)
		return contractSvc.SessionKey{}, false
	}

	party, ok := contract.ProviderParty()
	if requested := r.URL.Query().Get("party_id"); requested != "" {
		party, ok = contract.Party(requested)
	}
	if !ok {
		handleError(w, contractModels.ErrPartyNotFound)
		return contractSvc.SessionKey{}, false
	}

	return contractSvc.SessionKey{ContractID: id, PartyID: party.ID, DeviceID: deviceID(r)}, true
}

// signerKey resolves the session key from a verified signing link
func (h *SigningHandler) signerKey(w http.ResponseWriter, r *http.Request) (contractSvc.SessionKey, bool) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return contractSvc.SessionKey{}, false
	}

	claims := httputil.GetSigner(r)
	if err := h.authorizer.CanAccessContract(r.Context(), claims, id); err != nil {
		handleError(w, err)
		return contractSvc.SessionKey{}, false
	}

	return contractSvc.SessionKey{ContractID: id, PartyID: claims.PartyID, DeviceID: deviceID(r)}, true
}

// StartProviderSession opens the provider's "prepare & sign" session
// POST /api/contracts/{id}/signing
func (h *SigningHandler) StartProviderSession(w http.ResponseWriter, r *http.Request) {
	key, ok := h.providerKey(w, r)
	if !ok {
		return
	}
	h.start(w, r, key, httputil.GetOrganizationID(r))
}

// GetProviderSession returns the provider's session state
// GET /api/contracts/{id}/signing
func (h *SigningHandler) GetProviderSession(w http.ResponseWriter, r *http.Request) {
	if key, ok := h.providerKey(w, r); ok {
		h.get(w, r, key)
	}
}

// OpenProviderField opens a field in the provider's session
// POST /api/contracts/{id}/signing/fields/{fieldId}/open
func (h *SigningHandler) OpenProviderField(w http.ResponseWriter, r *http.Request) {
	if key, ok := h.providerKey(w, r); ok {
		h.openField(w, r, key)
	}
}

// SetProviderField writes a field response in the provider's session
// PUT /api/contracts/{id}/signing/fields/{fieldId}
func (h *SigningHandler) SetProviderField(w http.ResponseWriter, r *http.Request) {
	if key, ok := h.providerKey(w, r); ok {
		h.setField(w, r, key)
	}
}

// FinishProviderSession signs and sends the contract, or submits an in-person
// signer's responses when the session belongs to another party
// POST /api/contracts/{id}/signing/finish
func (h *SigningHandler) FinishProviderSession(w http.ResponseWriter, r *http.Request) {
	key, ok := h.providerKey(w, r)
	if !ok {
		return
	}
	actor := providerActor(r)
	actor.PartyID = key.PartyID
	h.finish(w, r, key, actor)
}

// CancelProviderSession discards the provider's unsaved responses
// DELETE /api/contracts/{id}/signing
func (h *SigningHandler) CancelProviderSession(w http.ResponseWriter, r *http.Request) {
	if key, ok := h.providerKey(w, r); ok {
		h.cancel(w, r, key)
	}
}

// OpenContract shows a contract to a signing-link holder, recording the first view
// GET /api/sign/contracts/{id}
func (h *SigningHandler) OpenContract(w http.ResponseWriter, r *http.Request) {
	key, ok := h.signerKey(w, r)
	if !ok {
		return
	}

	rendered, err := h.contracts.OpenForSigner(r.Context(), key.ContractID, key.PartyID, signerActor(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, rendered)
}

// StartSignerSession opens the signer's session
// POST /api/sign/contracts/{id}/session
func (h *SigningHandler) StartSignerSession(w http.ResponseWriter, r *http.Request) {
	if key, ok := h.signerKey(w, r); ok {
		h.start(w, r, key, "")
	}
}

// GetSignerSession returns the signer's session state
// GET /api/sign/contracts/{id}/session
func (h *SigningHandler) GetSignerSession(w http.ResponseWriter, r *http.Request) {
	if key, ok := h.signerKey(w, r); ok {
		h.get(w, r, key)
	}
}

// OpenSignerField opens a field in the signer's session
// POST /api/sign/contracts/{id}/session/fields/{fieldId}/open
func (h *SigningHandler) OpenSignerField(w http.ResponseWriter, r *http.Request) {
	if key, ok := h.signerKey(w, r); ok {
		h.openField(w, r, key)
	}
}

// SetSignerField writes a field response in the signer's session
// PUT /api/sign/contracts/{id}/session/fields/{fieldId}
func (h *SigningHandler) SetSignerField(w http.ResponseWriter, r *http.Request) {
	if key, ok := h.signerKey(w, r); ok {
		h.setField(w, r, key)
	}
}

// FinishSignerSession submits the signer's responses
// POST /api/sign/contracts/{id}/session/finish
func (h *SigningHandler) FinishSignerSession(w http.ResponseWriter, r *http.Request) {
	if key, ok := h.signerKey(w, r); ok {
		h.finish(w, r, key, signerActor(r))
	}
}

// CancelSignerSession discards the signer's unsaved responses
// DELETE /api/sign/contracts/{id}/session
func (h *SigningHandler) CancelSignerSession(w http.ResponseWriter, r *http.Request) {
	if key, ok := h.signerKey(w, r); ok {
		h.cancel(w, r, key)
	}
}

// RequestChanges asks the provider to revise the contract
// POST /api/sign/contracts/{id}/request-changes
func (h *SigningHandler) RequestChanges(w http.ResponseWriter, r *http.Request) {
	key, ok := h.signerKey(w, r)
	if !ok {
		return
	}

	var req contractSvc.RequestChangesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	contract, err := h.contracts.RequestChanges(r.Context(), key.ContractID, key.PartyID, &req, signerActor(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contract)
}

// Decline refuses to sign
// POST /api/sign/contracts/{id}/decline
func (h *SigningHandler) Decline(w http.ResponseWriter, r *http.Request) {
	key, ok := h.signerKey(w, r)
	if !ok {
		return
	}

	var req contractSvc.DeclineRequest
	if err := httputil.ParseOptionalJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	contract, err := h.contracts.Decline(r.Context(), key.ContractID, key.PartyID, &req, signerActor(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contract)
}

func (h *SigningHandler) start(w http.ResponseWriter, r *http.Request, key contractSvc.SessionKey, organizationID string) {
	state, err := h.signing.StartSession(r.Context(), key, organizationID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, state)
}

func (h *SigningHandler) get(w http.ResponseWriter, r *http.Request, key contractSvc.SessionKey) {
	state, err := h.signing.GetSession(r.Context(), key)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, state)
}

func (h *SigningHandler) openField(w http.ResponseWriter, r *http.Request, key contractSvc.SessionKey) {
	fieldID, ok := PathParam(w, r, "fieldId", "Field ID")
	if !ok {
		return
	}

	result, err := h.signing.OpenField(r.Context(), key, fieldID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *SigningHandler) setField(w http.ResponseWriter, r *http.Request, key contractSvc.SessionKey) {
	fieldID, ok := PathParam(w, r, "fieldId", "Field ID")
	if !ok {
		return
	}

	var input contractSvc.FieldInput
	if err := httputil.ParseOptionalJSON(w, r, &input); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.signing.SetField(r.Context(), key, fieldID, &input)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, state)
}

func (h *SigningHandler) finish(w http.ResponseWriter, r *http.Request, key contractSvc.SessionKey, actor contractModels.Actor) {
	contract, err := h.signing.FinishSession(r.Context(), key, actor)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contract)
}

func (h *SigningHandler) cancel(w http.ResponseWriter, r *http.Request, key contractSvc.SessionKey) {
	if err := h.signing.CancelSession(r.Context(), key); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondNoContent(w)
}
