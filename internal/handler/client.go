package handler

import (
	"log/slog"
	"net/http"

	"studioflow/internal/domain/services"
	"studioflow/internal/httputil"
)

// ClientHandler handles client records and provider notifications
type ClientHandler struct {
	clients       services.ClientService
	notifications services.NotificationService
	logger        *slog.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(clients services.ClientService, notifications services.NotificationService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{
		clients:       clients,
		notifications: notifications,
		logger:        logger,
	}
}

// ListClients returns clients, optionally only the stale ones
// GET /api/clients?stale=true
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	staleOnly := r.URL.Query().Get("stale") == "true"

	clients, err := h.clients.ListClients(r.Context(), httputil.GetOrganizationID(r), staleOnly)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, clients)
}

// CreateClient adds a client record
// POST /api/clients
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req services.CreateClientRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.OrganizationID = httputil.GetOrganizationID(r)

	client, err := h.clients.CreateClient(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, client)
}

// GetClient returns one client
// GET /api/clients/{id}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Client ID")
	if !ok {
		return
	}

	client, err := h.clients.GetClient(r.Context(), id, httputil.GetOrganizationID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, client)
}

// UpdateClient patches a client record
// PATCH /api/clients/{id}
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Client ID")
	if !ok {
		return
	}

	var req services.UpdateClientRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	client, err := h.clients.UpdateClient(r.Context(), id, httputil.GetOrganizationID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, client)
}

// RecordContact stamps the client's last contact with now
// POST /api/clients/{id}/contact
func (h *ClientHandler) RecordContact(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Client ID")
	if !ok {
		return
	}

	client, err := h.clients.RecordContact(r.Context(), id, httputil.GetOrganizationID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, client)
}

// ListNotifications returns notifications, newest first
// GET /api/notifications?unread=true
func (h *ClientHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.notifications.ListNotifications(r.Context(), httputil.GetOrganizationID(r), unreadOnly)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, notifications)
}

// MarkNotificationRead flags one notification as read
// POST /api/notifications/{id}/read
func (h *ClientHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Notification ID")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id, httputil.GetOrganizationID(r)); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondNoContent(w)
}
