package handlers

import (
	"net/http"

	"github.com/eersi/marketplace/internal/auth"
	"github.com/eersi/marketplace/internal/booking"
	"github.com/eersi/marketplace/internal/httpx"
)

// BookingsHandler serves the client side of bookings.
type BookingsHandler struct {
	engine *booking.Engine
}

func NewBookingsHandler(engine *booking.Engine) *BookingsHandler {
	return &BookingsHandler{engine: engine}
}

func (h *BookingsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	mine, err := h.engine.ListForClient(r.Context(), id.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, mine)
}

func (h *BookingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var in booking.CreateInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	b, err := h.engine.Create(r.Context(), id.ID, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

// Cancel is the DELETE verb on a booking; the record stays, status flips.
func (h *BookingsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	if _, err := h.engine.Cancel(r.Context(), r.PathValue("id"), id.ID); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *BookingsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	b, bud, err := h.engine.ClientConfirm(r.Context(), r.PathValue("id"), id.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "booking": b, "budget": bud})
}
