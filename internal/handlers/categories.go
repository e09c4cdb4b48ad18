package handlers

import (
	"net/http"

	"github.com/eersi/marketplace/internal/httpx"
	"github.com/eersi/marketplace/internal/listing"
)

// CategoriesHandler serves the categories actually in use by listings.
type CategoriesHandler struct {
	listings *listing.Service
}

func NewCategoriesHandler(listings *listing.Service) *CategoriesHandler {
	return &CategoriesHandler{listings: listings}
}

func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.listings.CategoriesInUse(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cats)
}
