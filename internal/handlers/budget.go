package handlers

import (
	"net/http"

	"github.com/eersi/marketplace/internal/apperr"
	"github.com/eersi/marketplace/internal/auth"
	"github.com/eersi/marketplace/internal/budget"
	"github.com/eersi/marketplace/internal/httpx"
)

// BudgetHandler serves the client's budget ledger.
type BudgetHandler struct {
	budgets *budget.Service
}

func NewBudgetHandler(budgets *budget.Service) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	b, err := h.budgets.GetOrCreate(r.Context(), id.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *BudgetHandler) Put(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var in budget.UpdateInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	b, err := h.budgets.Update(r.Context(), id.ID, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

type recordRequest struct {
	Category string   `json:"category"`
	Amount   *float64 `json:"amount"`
	Date     string   `json:"date"`
}

func (h *BudgetHandler) Record(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var req recordRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if req.Category == "" || req.Amount == nil {
		httpx.Error(w, apperr.Validation("category and numeric amount required"))
		return
	}
	b, err := h.budgets.Record(r.Context(), id.ID, budget.RecordInput{
		Category: req.Category,
		Amount:   *req.Amount,
		Date:     req.Date,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}
