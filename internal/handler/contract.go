package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	contractSvc "studioflow/internal/domain/services/contract"
	"studioflow/internal/httputil"
)

// ContractHandler handles the provider's contract HTTP requests
type ContractHandler struct {
	contracts contractSvc.ContractService
	versions  contractSvc.VersionService
	logger    *slog.Logger
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contracts contractSvc.ContractService, versions contractSvc.VersionService, logger *slog.Logger) *ContractHandler {
	return &ContractHandler{
		contracts: contracts,
		versions:  versions,
		logger:    logger,
	}
}

// ListContracts returns the organization's contracts
// GET /api/contracts
func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.contracts.ListContracts(r.Context(), httputil.GetOrganizationID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contracts)
}

// CreateContract creates a draft contract
// POST /api/contracts
func (h *ContractHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req contractSvc.CreateContractRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.OrganizationID = httputil.GetOrganizationID(r)

	contract, err := h.contracts.CreateContract(r.Context(), &req, providerActor(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, contract)
}

// GetContract returns one contract
// GET /api/contracts/{id}
func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return
	}

	contract, err := h.contracts.GetContract(r.Context(), id, httputil.GetOrganizationID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contract)
}

// RenderContract returns the body rendered against the variables, with field markers
// GET /api/contracts/{id}/render
func (h *ContractHandler) RenderContract(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return
	}

	rendered, err := h.contracts.RenderContract(r.Context(), id, httputil.GetOrganizationID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, rendered)
}

// UpdateVariables replaces the variables of an editable contract
// PUT /api/contracts/{id}/variables
func (h *ContractHandler) UpdateVariables(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return
	}

	var req contractSvc.UpdateVariablesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	contract, err := h.contracts.UpdateVariables(r.Context(), id, httputil.GetOrganizationID(r), &req, providerActor(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contract)
}

// PrepareFields places signature fields from the rendered document layout.
// Answers 409 with retry_after_ms while the document canvas is not ready.
// POST /api/contracts/{id}/prepare
func (h *ContractHandler) PrepareFields(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return
	}

	var req contractSvc.PrepareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	contract, err := h.contracts.PrepareFields(r.Context(), id, httputil.GetOrganizationID(r), &req, providerActor(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contract)
}

// Archive moves a contract to the archive
// POST /api/contracts/{id}/archive
func (h *ContractHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return
	}

	contract, err := h.contracts.Archive(r.Context(), id, httputil.GetOrganizationID(r), providerActor(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contract)
}

// Unarchive restores an archived contract, to draft unless a target status is given
// POST /api/contracts/{id}/unarchive
func (h *ContractHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return
	}

	var req contractSvc.UnarchiveRequest
	if err := httputil.ParseOptionalJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	contract, err := h.contracts.Unarchive(r.Context(), id, httputil.GetOrganizationID(r), &req, providerActor(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contract)
}

// Expire closes a contract that is still out for signature
// POST /api/contracts/{id}/expire
func (h *ContractHandler) Expire(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return
	}

	contract, err := h.contracts.Expire(r.Context(), id, httputil.GetOrganizationID(r), providerActor(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contract)
}

// Duplicate copies a contract into a fresh draft
// POST /api/contracts/{id}/duplicate
func (h *ContractHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return
	}

	contract, err := h.contracts.Duplicate(r.Context(), id, httputil.GetOrganizationID(r), providerActor(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, contract)
}

// ListVersions returns the version history, newest last
// GET /api/contracts/{id}/versions
func (h *ContractHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return
	}

	versions, err := h.versions.ListVersions(r.Context(), id, httputil.GetOrganizationID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, versions)
}

// CompareVersions diffs two versions
// GET /api/contracts/{id}/versions/compare?from=1&to=3
func (h *ContractHandler) CompareVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return
	}

	from, err := strconv.Atoi(r.URL.Query().Get("from"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "from must be a version number")
		return
	}
	to, err := strconv.Atoi(r.URL.Query().Get("to"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "to must be a version number")
		return
	}

	diff, err := h.versions.CompareVersions(r.Context(), id, httputil.GetOrganizationID(r), from, to)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, diff)
}

// RestoreVersion makes a historical version current
// POST /api/contracts/{id}/versions/{version}/restore
func (h *ContractHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Contract ID")
	if !ok {
		return
	}
	version, err := strconv.Atoi(r.PathValue("version"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "version must be a number")
		return
	}

	contract, err := h.versions.RestoreVersion(r.Context(), id, httputil.GetOrganizationID(r), version, providerActor(r))
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("contract version restored",
		"contract_id", contract.ID,
		"restored_from", version,
		"version", contract.Version,
	)
	httputil.RespondJSON(w, http.StatusOK, contract)
}
