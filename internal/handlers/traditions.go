package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/eersi/marketplace/internal/apperr"
	"github.com/eersi/marketplace/internal/docstore"
	"github.com/eersi/marketplace/internal/httpx"
	"github.com/eersi/marketplace/internal/models"
)

// TraditionsHandler serves read-only editorial content.
type TraditionsHandler struct {
	store *docstore.Store
}

func NewTraditionsHandler(store *docstore.Store) *TraditionsHandler {
	return &TraditionsHandler{store: store}
}

// absolutizeImages rewrites relative image paths against the request host so
// they resolve from any frontend origin.
func absolutizeImages(r *http.Request, t models.Tradition) models.Tradition {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := scheme + "://" + r.Host

	out := make([]string, 0, len(t.Images))
	for _, src := range t.Images {
		switch {
		case src == "":
		case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
			out = append(out, src)
		case strings.HasPrefix(src, "/"):
			out = append(out, host+src)
		default:
			out = append(out, host+"/"+strings.TrimPrefix(src, "./"))
		}
	}
	t.Images = out
	return t
}

func (h *TraditionsHandler) List(w http.ResponseWriter, r *http.Request) {
	traditions, err := docstore.LoadAll[models.Tradition](r.Context(), h.store, docstore.CollTraditions)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	region := r.URL.Query().Get("region")
	out := []models.Tradition{}
	for _, t := range traditions {
		if region != "" && !strings.EqualFold(t.Region, region) {
			continue
		}
		out = append(out, absolutizeImages(r, t))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *TraditionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httpx.Error(w, apperr.Validation("Invalid tradition id"))
		return
	}
	traditions, err := docstore.LoadAll[models.Tradition](r.Context(), h.store, docstore.CollTraditions)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	for _, t := range traditions {
		if t.ID == id {
			httpx.JSON(w, http.StatusOK, absolutizeImages(r, t))
			return
		}
	}
	httpx.Error(w, apperr.NotFound("Tradition not found"))
}
