package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eersi/marketplace/internal/auth"
	"github.com/eersi/marketplace/internal/booking"
	"github.com/eersi/marketplace/internal/budget"
	"github.com/eersi/marketplace/internal/category"
	"github.com/eersi/marketplace/internal/docstore"
	"github.com/eersi/marketplace/internal/listing"
	"github.com/eersi/marketplace/internal/models"
	"github.com/eersi/marketplace/internal/notify"
)

func newVendorPortal(t *testing.T) (*VendorPortalHandler, *docstore.Store) {
	t.Helper()
	backend, err := docstore.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	store := docstore.New(backend)
	registry := category.Default()
	engine := booking.NewEngine(store,
		listing.NewService(store, registry),
		budget.NewService(store),
		notify.NewDispatcher(store, nil, "test", nil))
	return NewVendorPortalHandler(store, registry, engine), store
}

func vendorRequest(t *testing.T, method, target, userID string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	ctx := auth.WithIdentity(req.Context(), auth.Identity{ID: userID, Role: models.RoleVendor})
	return req.WithContext(ctx)
}

func TestApplyRejectsUnknownCategory(t *testing.T) {
	h, _ := newVendorPortal(t)
	rr := httptest.NewRecorder()
	h.Apply(rr, vendorRequest(t, http.MethodPost, "/api/vendor/apply", "u1", map[string]string{
		"storeName": "Store", "region": "Tunis", "category": "not-a-thing",
	}))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400: %s", rr.Code, rr.Body.String())
	}
}

func TestApplyIsOncePerOwner(t *testing.T) {
	h, _ := newVendorPortal(t)
	body := map[string]string{"storeName": "Store", "region": "Tunis", "category": "photographer"}

	rr := httptest.NewRecorder()
	h.Apply(rr, vendorRequest(t, http.MethodPost, "/api/vendor/apply", "u1", body))
	if rr.Code != http.StatusCreated {
		t.Fatalf("first apply: %d %s", rr.Code, rr.Body.String())
	}
	rr = httptest.NewRecorder()
	h.Apply(rr, vendorRequest(t, http.MethodPost, "/api/vendor/apply", "u1", body))
	if rr.Code != http.StatusConflict {
		t.Fatalf("second apply: %d, want 409", rr.Code)
	}
}

func TestPatchMeNormalizesCategory(t *testing.T) {
	h, _ := newVendorPortal(t)
	rr := httptest.NewRecorder()
	h.Apply(rr, vendorRequest(t, http.MethodPost, "/api/vendor/apply", "u1", map[string]string{
		"storeName": "Store", "region": "Tunis", "category": "photographer",
	}))
	if rr.Code != http.StatusCreated {
		t.Fatalf("apply: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.PatchMe(rr, vendorRequest(t, http.MethodPatch, "/api/vendor/me", "u1", map[string]string{
		"category": "salon",
	}))
	if rr.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rr.Code, rr.Body.String())
	}
	var p models.VendorProfile
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Category != "hairdresser" {
		t.Errorf("category = %q, want hairdresser", p.Category)
	}
	if p.Status != models.ProfilePending {
		t.Errorf("patch must not touch status, got %q", p.Status)
	}
}

func TestServiceOwnership(t *testing.T) {
	h, store := newVendorPortal(t)
	ctx := context.Background()

	for _, owner := range []string{"u1", "u2"} {
		rr := httptest.NewRecorder()
		h.Apply(rr, vendorRequest(t, http.MethodPost, "/api/vendor/apply", owner, map[string]string{
			"storeName": "Store " + owner, "region": "Tunis", "category": "photographer",
		}))
		if rr.Code != http.StatusCreated {
			t.Fatalf("apply %s: %d", owner, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	h.CreateService(rr, vendorRequest(t, http.MethodPost, "/api/vendor/services", "u1", map[string]any{
		"title": "Full Day", "category": "photographer", "price": 600,
	}))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create service: %d %s", rr.Code, rr.Body.String())
	}
	var svc models.Service
	if err := json.Unmarshal(rr.Body.Bytes(), &svc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Another vendor cannot edit or delete it.
	req := vendorRequest(t, http.MethodPatch, "/api/vendor/services/"+svc.ID, "u2", map[string]any{"price": 1})
	req.SetPathValue("id", svc.ID)
	rr = httptest.NewRecorder()
	h.UpdateService(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("foreign update: %d, want 403", rr.Code)
	}

	req = vendorRequest(t, http.MethodDelete, "/api/vendor/services/"+svc.ID, "u2", nil)
	req.SetPathValue("id", svc.ID)
	rr = httptest.NewRecorder()
	h.DeleteService(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("foreign delete: %d, want 403", rr.Code)
	}

	req = vendorRequest(t, http.MethodDelete, "/api/vendor/services/"+svc.ID, "u1", nil)
	req.SetPathValue("id", svc.ID)
	rr = httptest.NewRecorder()
	h.DeleteService(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("owner delete: %d %s", rr.Code, rr.Body.String())
	}
	services, err := docstore.LoadAll[models.Service](ctx, store, docstore.CollServices)
	if err != nil {
		t.Fatalf("load services: %v", err)
	}
	if len(services) != 0 {
		t.Errorf("service still present after delete: %+v", services)
	}
}

func TestCreateServiceRejectsNegativePrice(t *testing.T) {
	h, _ := newVendorPortal(t)
	rr := httptest.NewRecorder()
	h.Apply(rr, vendorRequest(t, http.MethodPost, "/api/vendor/apply", "u1", map[string]string{
		"storeName": "Store", "region": "Tunis", "category": "photographer",
	}))
	if rr.Code != http.StatusCreated {
		t.Fatalf("apply: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.CreateService(rr, vendorRequest(t, http.MethodPost, "/api/vendor/services", "u1", map[string]any{
		"title": "Bad", "category": "photographer", "price": -5,
	}))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("negative price: %d, want 400", rr.Code)
	}
}
