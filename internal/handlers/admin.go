package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/eersi/marketplace/internal/apperr"
	"github.com/eersi/marketplace/internal/docstore"
	"github.com/eersi/marketplace/internal/httpx"
	"github.com/eersi/marketplace/internal/models"
	"github.com/eersi/marketplace/internal/notify"
)

// AdminHandler serves vendor moderation and the user directory.
type AdminHandler struct {
	store    *docstore.Store
	notifier *notify.Dispatcher
}

func NewAdminHandler(store *docstore.Store, notifier *notify.Dispatcher) *AdminHandler {
	return &AdminHandler{store: store, notifier: notifier}
}

func (h *AdminHandler) PendingVendors(w http.ResponseWriter, r *http.Request) {
	profiles, err := docstore.LoadAll[models.VendorProfile](r.Context(), h.store, docstore.CollVendorProfiles)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	pending := []models.VendorProfile{}
	for _, p := range profiles {
		if p.Status == models.ProfilePending {
			pending = append(pending, p)
		}
	}
	httpx.JSON(w, http.StatusOK, pending)
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.ProfileApproved)
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.ProfileRejected)
}

func (h *AdminHandler) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	profileID := r.PathValue("id")
	var out models.VendorProfile
	_, err := docstore.Update(r.Context(), h.store, docstore.CollVendorProfiles,
		func(profiles []models.VendorProfile) ([]models.VendorProfile, error) {
			for i := range profiles {
				if profiles[i].ID == profileID {
					profiles[i].Status = status
					profiles[i].UpdatedAt = time.Now()
					out = profiles[i]
					return profiles, nil
				}
			}
			return nil, apperr.NotFound("Vendor profile not found")
		})
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if owner, ok := h.userByID(r, out.OwnerID); ok && owner.Email != "" {
		msg := notify.Message{
			ToUserID: owner.ID,
			ToEmail:  owner.Email,
			ToRole:   models.RoleVendor,
			RefID:    out.ID,
		}
		if status == models.ProfileApproved {
			msg.Title = "Vendor application approved"
			msg.Event = "vendor_approved"
			msg.Body = fmt.Sprintf(
				"Congratulations! Your vendor application has been approved.\n\nStore: %s\nRegion: %s\n\nYou can now add services and receive bookings.",
				out.StoreName, out.Region)
		} else {
			msg.Title = "Vendor application rejected"
			msg.Event = "vendor_rejected"
			msg.Body = fmt.Sprintf(
				"Your vendor application was rejected.\n\nStore: %s\nRegion: %s\n\nUpdate your info and re-apply from the vendor dashboard.",
				out.StoreName, out.Region)
		}
		h.notifier.Notify(r.Context(), msg)
	}

	httpx.JSON(w, http.StatusOK, out)
}

// Users lists every account with the password hash stripped.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := docstore.LoadAll[models.User](r.Context(), h.store, docstore.CollUsers)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	safe := make([]models.User, 0, len(users))
	for _, u := range users {
		safe = append(safe, u.Sanitize())
	}
	httpx.JSON(w, http.StatusOK, safe)
}

func (h *AdminHandler) userByID(r *http.Request, id string) (models.User, bool) {
	users, err := docstore.LoadAll[models.User](r.Context(), h.store, docstore.CollUsers)
	if err != nil {
		return models.User{}, false
	}
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}
