package handlers

import (
	"net/http"

	"github.com/eersi/marketplace/internal/auth"
	"github.com/eersi/marketplace/internal/httpx"
	"github.com/eersi/marketplace/internal/notify"
)

// NotificationsHandler serves the caller's in-app feed.
type NotificationsHandler struct {
	notifier *notify.Dispatcher
}

func NewNotificationsHandler(notifier *notify.Dispatcher) *NotificationsHandler {
	return &NotificationsHandler{notifier: notifier}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	mine, err := h.notifier.ListFor(r.Context(), id.ID, id.Email)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, mine)
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	n, err := h.notifier.MarkRead(r.Context(), r.PathValue("id"), id.ID, id.Email)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, n)
}

func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	changed, err := h.notifier.MarkAllRead(r.Context(), id.ID, id.Email)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "changed": changed})
}
