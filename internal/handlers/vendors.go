package handlers

import (
	"net/http"
	"strconv"

	"github.com/eersi/marketplace/internal/httpx"
	"github.com/eersi/marketplace/internal/listing"
)

// VendorsHandler serves the public listing surface.
type VendorsHandler struct {
	listings *listing.Service
}

func NewVendorsHandler(listings *listing.Service) *VendorsHandler {
	return &VendorsHandler{listings: listings}
}

// List merges legacy vendors and approved services, filtered by query.
func (h *VendorsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := listing.Filter{
		Category: q.Get("category"),
		Region:   q.Get("region"),
	}
	if raw := q.Get("maxPrice"); raw != "" {
		if max, err := strconv.ParseFloat(raw, 64); err == nil {
			f.MaxPrice = &max
		}
	}
	all, err := h.listings.Search(r.Context(), f)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

// Get resolves one listing by id.
func (h *VendorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.listings.Resolve(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, l)
}
