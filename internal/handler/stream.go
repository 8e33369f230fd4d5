package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	contractModels "studioflow/internal/domain/models/contract"
	contractSvc "studioflow/internal/domain/services/contract"
	"studioflow/internal/handler/sse"
	"studioflow/internal/httputil"
)

// ContractStreamHandler pushes whole contract documents to the dashboard as they change
type ContractStreamHandler struct {
	contracts contractSvc.ContractService
	config    *sse.Config
	logger    *slog.Logger
}

// NewContractStreamHandler creates a new contract change-feed handler
func NewContractStreamHandler(contracts contractSvc.ContractService, config *sse.Config, logger *slog.Logger) *ContractStreamHandler {
	if config == nil {
		config = sse.DefaultConfig()
	}
	return &ContractStreamHandler{
		contracts: contracts,
		config:    config,
		logger:    logger,
	}
}

// StreamContracts handles GET /api/contracts/stream
// Each event carries one full contract document; the newest write wins on the client.
func (h *ContractStreamHandler) StreamContracts(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	orgID := httputil.GetOrganizationID(r)
	clientID := uuid.NewString()
	ctx := r.Context()

	changes := make(chan *contractModels.Contract, h.config.BufferSize)
	failed := make(chan error, 1)

	unsubscribe, err := h.contracts.Subscribe(ctx, orgID,
		func(c *contractModels.Contract) {
			select {
			case changes <- c:
			default:
				// A slow client skips intermediate documents; a later one supersedes them
				h.logger.Warn("contract stream buffer full, dropping change",
					"client_id", clientID,
					"contract_id", c.ID,
				)
			}
		},
		func(err error) {
			select {
			case failed <- err:
			default:
			}
		},
	)
	if err != nil {
		handleError(w, err)
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	writer := sse.NewWriter(w, flusher, clientID)
	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	clientGone := sse.KeepAlive(pingCtx, writer, h.config.KeepAliveInterval, h.logger)

	h.logger.Info("contract stream opened", "client_id", clientID, "organization_id", orgID)
	defer h.logger.Info("contract stream closed", "client_id", clientID)

	for {
		select {
		case <-ctx.Done():
			return
		case <-clientGone:
			return
		case err := <-failed:
			h.logger.Error("contract subscription failed", "client_id", clientID, "error", err)
			writer.WriteEvent("", "error", []byte(`{"message":"subscription lost, reconnect"}`))
			return
		case c := <-changes:
			data, err := json.Marshal(c)
			if err != nil {
				h.logger.Error("encode contract event", "contract_id", c.ID, "error", err)
				continue
			}
			if err := writer.WriteEvent(strconv.FormatInt(c.Revision, 10), "contract", data); err != nil {
				h.logger.Debug("contract stream write failed", "client_id", clientID, "error", err)
				return
			}
		}
	}
}
