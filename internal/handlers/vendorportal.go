package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/eersi/marketplace/internal/apperr"
	"github.com/eersi/marketplace/internal/auth"
	"github.com/eersi/marketplace/internal/booking"
	"github.com/eersi/marketplace/internal/category"
	"github.com/eersi/marketplace/internal/docstore"
	"github.com/eersi/marketplace/internal/httpx"
	"github.com/eersi/marketplace/internal/models"
	"github.com/eersi/marketplace/internal/validation"
)

// VendorPortalHandler serves the vendor's own profile, services and
// bookings. All routes are role-gated to vendors.
type VendorPortalHandler struct {
	store    *docstore.Store
	registry *category.Registry
	engine   *booking.Engine
}

func NewVendorPortalHandler(store *docstore.Store, registry *category.Registry, engine *booking.Engine) *VendorPortalHandler {
	return &VendorPortalHandler{store: store, registry: registry, engine: engine}
}

func (h *VendorPortalHandler) myProfile(r *http.Request) (models.VendorProfile, error) {
	id, _ := auth.IdentityFromContext(r.Context())
	profiles, err := docstore.LoadAll[models.VendorProfile](r.Context(), h.store, docstore.CollVendorProfiles)
	if err != nil {
		return models.VendorProfile{}, err
	}
	for _, p := range profiles {
		if p.OwnerID == id.ID {
			return p, nil
		}
	}
	return models.VendorProfile{}, apperr.NotFound("Vendor profile not found. Apply first.")
}

type applyRequest struct {
	StoreName   string `json:"storeName"`
	Region      string `json:"region"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Apply creates the vendor's profile in pending status. One per owner.
func (h *VendorPortalHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var req applyRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	v := validation.Violations{}
	validation.Required("storeName", req.StoreName, v)
	validation.Required("region", req.Region, v)
	validation.Required("category", req.Category, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "storeName, region and category are required", v)
		return
	}
	key := h.registry.Normalize(req.Category)
	if key == "" {
		httpx.Error(w, apperr.Validation("Unknown category"))
		return
	}

	now := time.Now()
	profile := models.VendorProfile{
		ID:          uuid.NewString(),
		OwnerID:     id.ID,
		StoreName:   req.StoreName,
		Region:      req.Region,
		Category:    key,
		Description: req.Description,
		Status:      models.ProfilePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := docstore.Update(r.Context(), h.store, docstore.CollVendorProfiles,
		func(profiles []models.VendorProfile) ([]models.VendorProfile, error) {
			for _, p := range profiles {
				if p.OwnerID == id.ID {
					return nil, apperr.Conflict("Vendor profile already exists")
				}
			}
			return append(profiles, profile), nil
		})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, profile)
}

func (h *VendorPortalHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.myProfile(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

type profilePatch struct {
	StoreName   *string `json:"storeName"`
	Region      *string `json:"region"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

// PatchMe updates profile fields the vendor controls. Status is not among
// them; only admins move it.
func (h *VendorPortalHandler) PatchMe(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var req profilePatch
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if req.Category != nil {
		key := h.registry.Normalize(*req.Category)
		if key == "" {
			httpx.Error(w, apperr.Validation("Unknown category"))
			return
		}
		req.Category = &key
	}

	var out models.VendorProfile
	_, err := docstore.Update(r.Context(), h.store, docstore.CollVendorProfiles,
		func(profiles []models.VendorProfile) ([]models.VendorProfile, error) {
			for i := range profiles {
				if profiles[i].OwnerID != id.ID {
					continue
				}
				if req.StoreName != nil {
					profiles[i].StoreName = *req.StoreName
				}
				if req.Region != nil {
					profiles[i].Region = *req.Region
				}
				if req.Category != nil {
					profiles[i].Category = *req.Category
				}
				if req.Description != nil {
					profiles[i].Description = *req.Description
				}
				profiles[i].UpdatedAt = time.Now()
				out = profiles[i]
				return profiles, nil
			}
			return nil, apperr.NotFound("Vendor profile not found. Apply first.")
		})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

type serviceRequest struct {
	Title       *string          `json:"title"`
	Category    *string          `json:"category"`
	Price       *float64         `json:"price"`
	Description *string          `json:"description"`
	TimeSlots   *models.SlotList `json:"timeSlots"`
}

// CreateService adds a service under the vendor's profile. Vendors can add
// services while still pending; admin approval controls visibility.
func (h *VendorPortalHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	p, err := h.myProfile(r)
	if err != nil {
		httpx.Error(w, apperr.Validation("Create vendor profile first (/vendor/apply)"))
		return
	}
	var req serviceRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if req.Title == nil || *req.Title == "" || req.Category == nil || *req.Category == "" {
		httpx.Error(w, apperr.Validation("title and category are required"))
		return
	}
	key := h.registry.Normalize(*req.Category)
	if key == "" {
		httpx.Error(w, apperr.Validation("Unknown category"))
		return
	}

	price := 0.0
	if req.Price != nil {
		price = *req.Price
	}
	if price < 0 {
		httpx.Error(w, apperr.Validation("price must not be negative"))
		return
	}

	now := time.Now()
	svc := models.Service{
		ID:              uuid.NewString(),
		VendorProfileID: p.ID,
		Title:           *req.Title,
		Category:        key,
		Price:           price,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.TimeSlots != nil {
		svc.TimeSlots = *req.TimeSlots
	} else {
		svc.TimeSlots = models.SlotList{}
	}

	_, err = docstore.Update(r.Context(), h.store, docstore.CollServices,
		func(services []models.Service) ([]models.Service, error) {
			return append(services, svc), nil
		})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, svc)
}

func (h *VendorPortalHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	p, err := h.myProfile(r)
	if err != nil {
		httpx.JSON(w, http.StatusOK, []models.Service{})
		return
	}
	services, err := docstore.LoadAll[models.Service](r.Context(), h.store, docstore.CollServices)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	mine := []models.Service{}
	for _, s := range services {
		if s.VendorProfileID == p.ID {
			mine = append(mine, s)
		}
	}
	httpx.JSON(w, http.StatusOK, mine)
}

func (h *VendorPortalHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	p, err := h.myProfile(r)
	if err != nil {
		httpx.Error(w, apperr.Validation("Create vendor profile first"))
		return
	}
	var req serviceRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if req.Category != nil {
		key := h.registry.Normalize(*req.Category)
		if key == "" {
			httpx.Error(w, apperr.Validation("Unknown category"))
			return
		}
		req.Category = &key
	}
	if req.Price != nil && *req.Price < 0 {
		httpx.Error(w, apperr.Validation("price must not be negative"))
		return
	}

	serviceID := r.PathValue("id")
	var out models.Service
	_, err = docstore.Update(r.Context(), h.store, docstore.CollServices,
		func(services []models.Service) ([]models.Service, error) {
			for i := range services {
				if services[i].ID != serviceID {
					continue
				}
				if services[i].VendorProfileID != p.ID {
					return nil, apperr.Forbidden("Forbidden")
				}
				if req.Title != nil {
					services[i].Title = *req.Title
				}
				if req.Category != nil {
					services[i].Category = *req.Category
				}
				if req.Price != nil {
					services[i].Price = *req.Price
				}
				if req.Description != nil {
					services[i].Description = *req.Description
				}
				if req.TimeSlots != nil {
					services[i].TimeSlots = *req.TimeSlots
				}
				services[i].UpdatedAt = time.Now()
				out = services[i]
				return services, nil
			}
			return nil, apperr.NotFound("Service not found")
		})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *VendorPortalHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	p, err := h.myProfile(r)
	if err != nil {
		httpx.Error(w, apperr.Validation("Create vendor profile first"))
		return
	}
	serviceID := r.PathValue("id")
	_, err = docstore.Update(r.Context(), h.store, docstore.CollServices,
		func(services []models.Service) ([]models.Service, error) {
			for i := range services {
				if services[i].ID != serviceID {
					continue
				}
				if services[i].VendorProfileID != p.ID {
					return nil, apperr.Forbidden("Forbidden")
				}
				return append(services[:i], services[i+1:]...), nil
			}
			return nil, apperr.NotFound("Service not found")
		})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *VendorPortalHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	p, err := h.myProfile(r)
	if err != nil {
		httpx.JSON(w, http.StatusOK, []models.Booking{})
		return
	}
	mine, err := h.engine.ListForVendor(r.Context(), p.ID, id.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, mine)
}

type bookingStatusRequest struct {
	Status string `json:"status"`
}

func (h *VendorPortalHandler) SetBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	p, err := h.myProfile(r)
	if err != nil {
		httpx.Error(w, apperr.Validation("Create vendor profile first"))
		return
	}
	var req bookingStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	b, err := h.engine.VendorSetStatus(r.Context(), r.PathValue("id"), p.ID, id.ID, req.Status)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}
