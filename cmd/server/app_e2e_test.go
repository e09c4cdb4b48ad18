package main

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
	"github.com/eersi/marketplace/internal/handlers"
	"github.com/eersi/marketplace/internal/listing"
	"github.com/eersi/marketplace/internal/models"
	"github.com/eersi/marketplace/internal/notify"
)

const testAdminKey = "test-admin-key"

func newTestApp(t *testing.T) (*App, *docstore.Store) {
	t.Helper()
	backend, err := docstore.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	store := docstore.New(backend)
	registry := category.Default()
	tokens := auth.NewTokens("e2e-secret")
	notifier := notify.NewDispatcher(store, nil, "test", nil)
	listings := listing.NewService(store, registry)
	budgets := budget.NewService(store)
	engine := booking.NewEngine(store, listings, budgets, notifier)

	app := NewApp(tokens, Handlers{
		Auth:          handlers.NewAuthHandler(store, tokens, testAdminKey),
		Categories:    handlers.NewCategoriesHandler(listings),
		Vendors:       handlers.NewVendorsHandler(listings),
		Bookings:      handlers.NewBookingsHandler(engine),
		Budget:        handlers.NewBudgetHandler(budgets),
		VendorPortal:  handlers.NewVendorPortalHandler(store, registry, engine),
		Admin:         handlers.NewAdminHandler(store, notifier),
		Notifications: handlers.NewNotificationsHandler(notifier),
		Traditions:    handlers.NewTraditionsHandler(store),
	})
	return app, store
}

func doJSON(t *testing.T, app *App, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %s: %v", rr.Body.String(), err)
	}
}

type tokenResp struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func register(t *testing.T, app *App, email, role string) tokenResp {
	t.Helper()
	body := map[string]string{"email": email, "password": "secret123", "role": role}
	if role == models.RoleAdmin {
		body["adminKey"] = testAdminKey
	}
	rr := doJSON(t, app, http.MethodPost, "/api/auth/register", "", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("register %s: %d %s", email, rr.Code, rr.Body.String())
	}
	var out tokenResp
	decodeBody(t, rr, &out)
	return out
}

func TestRegisterLoginMe(t *testing.T) {
	app, _ := newTestApp(t)

	first := register(t, app, "Client@Example.com", "client")
	if first.Token == "" {
		t.Fatal("no token issued")
	}
	if first.User.Email != "client@example.com" {
		t.Errorf("email not lowercased: %q", first.User.Email)
	}
	if first.User.PasswordHash != "" {
		t.Error("password hash leaked in response")
	}

	rr := doJSON(t, app, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": "client@example.com", "password": "other"})
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate register: %d, want 409", rr.Code)
	}

	rr = doJSON(t, app, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "client@example.com", "password": "wrong"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("bad password login: %d, want 401", rr.Code)
	}

	rr = doJSON(t, app, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "client@example.com", "password": "secret123"})
	if rr.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rr.Code, rr.Body.String())
	}
	var logged tokenResp
	decodeBody(t, rr, &logged)

	rr = doJSON(t, app, http.MethodGet, "/api/auth/me", logged.Token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: %d %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, app, http.MethodGet, "/api/auth/me", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("me without token: %d, want 401", rr.Code)
	}
}

// TestMarketplaceFlow walks the whole storefront: a vendor applies and adds a
// service, an admin approves, a client books the slot, a second client is
// refused the same slot, and confirmation lands the price on the budget.
func TestMarketplaceFlow(t *testing.T) {
	app, _ := newTestApp(t)

	vendor := register(t, app, "vendor@example.com", "vendor")
	admin := register(t, app, "admin@example.com", "admin")
	client := register(t, app, "client@example.com", "client")
	rival := register(t, app, "rival@example.com", "client")

	rr := doJSON(t, app, http.MethodPost, "/api/vendor/apply", vendor.Token, map[string]string{
		"storeName": "Salon Yasmine", "region": "Tunis", "category": "salon",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("apply: %d %s", rr.Code, rr.Body.String())
	}
	var profile models.VendorProfile
	decodeBody(t, rr, &profile)
	if profile.Status != models.ProfilePending {
		t.Errorf("new profile status = %q, want pending", profile.Status)
	}
	if profile.Category != "hairdresser" {
		t.Errorf("category = %q, want normalized hairdresser", profile.Category)
	}

	rr = doJSON(t, app, http.MethodPost, "/api/vendor/services", vendor.Token, map[string]any{
		"title": "Bridal Hair", "category": "hairdresser", "price": 150,
		"timeSlots": []string{"morning", "afternoon"},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create service: %d %s", rr.Code, rr.Body.String())
	}
	var svc models.Service
	decodeBody(t, rr, &svc)

	// Invisible until the profile is approved.
	rr = doJSON(t, app, http.MethodGet, "/api/vendors", "", nil)
	var listings []listing.Listing
	decodeBody(t, rr, &listings)
	if len(listings) != 0 {
		t.Fatalf("pending vendor already listed: %+v", listings)
	}
	rr = doJSON(t, app, http.MethodGet, "/api/vendors/"+svc.ID, "", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("pending service by id: %d, want 404", rr.Code)
	}

	rr = doJSON(t, app, http.MethodGet, "/api/admin/vendors/pending", admin.Token, nil)
	var pending []models.VendorProfile
	decodeBody(t, rr, &pending)
	if len(pending) != 1 || pending[0].ID != profile.ID {
		t.Fatalf("pending list = %+v", pending)
	}
	rr = doJSON(t, app, http.MethodPatch, "/api/admin/vendors/"+profile.ID+"/approve", admin.Token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("approve: %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, app, http.MethodGet, "/api/vendors?category=hairdresser", "", nil)
	decodeBody(t, rr, &listings)
	if len(listings) != 1 || listings[0].ID != svc.ID {
		t.Fatalf("approved listing missing: %+v", listings)
	}
	if listings[0].Price != 150 {
		t.Errorf("price = %v", listings[0].Price)
	}

	// Book, collide, confirm.
	rr = doJSON(t, app, http.MethodPost, "/api/bookings", client.Token, map[string]string{
		"vendorId": svc.ID, "date": "2025-07-01", "timeSlot": "morning",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("book: %d %s", rr.Code, rr.Body.String())
	}
	var booked models.Booking
	decodeBody(t, rr, &booked)
	if booked.Status != models.BookingRequested {
		t.Errorf("status = %q", booked.Status)
	}

	rr = doJSON(t, app, http.MethodPost, "/api/bookings", rival.Token, map[string]string{
		"vendorId": svc.ID, "date": "2025-07-01", "timeSlot": "morning",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("slot collision: %d, want 409", rr.Code)
	}

	rr = doJSON(t, app, http.MethodPost, "/api/bookings/"+booked.ID+"/confirm", client.Token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("confirm: %d %s", rr.Code, rr.Body.String())
	}
	var confirmResp struct {
		OK      bool           `json:"ok"`
		Booking models.Booking `json:"booking"`
		Budget  models.Budget  `json:"budget"`
	}
	decodeBody(t, rr, &confirmResp)
	if confirmResp.Booking.Status != models.BookingConfirmed {
		t.Errorf("confirmed status = %q", confirmResp.Booking.Status)
	}
	if confirmResp.Budget.Actuals["hairdresser"] != 150 {
		t.Errorf("actuals = %v, want hairdresser 150", confirmResp.Budget.Actuals)
	}

	rr = doJSON(t, app, http.MethodGet, "/api/budget", client.Token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("budget: %d %s", rr.Code, rr.Body.String())
	}
	var bud models.Budget
	decodeBody(t, rr, &bud)
	if bud.Actuals["hairdresser"] != 150 || len(bud.Records) != 1 {
		t.Fatalf("budget = %+v", bud)
	}

	// Vendor sees the booking and can accept it.
	rr = doJSON(t, app, http.MethodGet, "/api/vendor/bookings", vendor.Token, nil)
	var vendorBookings []models.Booking
	decodeBody(t, rr, &vendorBookings)
	if len(vendorBookings) != 1 {
		t.Fatalf("vendor bookings = %+v", vendorBookings)
	}
	rr = doJSON(t, app, http.MethodPatch, "/api/vendor/bookings/"+booked.ID+"/status", vendor.Token,
		map[string]string{"status": "accepted"})
	if rr.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", rr.Code, rr.Body.String())
	}

	// Everyone involved has notifications by now.
	rr = doJSON(t, app, http.MethodGet, "/api/notifications", client.Token, nil)
	var feed []models.Notification
	decodeBody(t, rr, &feed)
	if len(feed) == 0 {
		t.Error("client feed empty after booking flow")
	}
}

func TestRoleGates(t *testing.T) {
	app, _ := newTestApp(t)
	vendor := register(t, app, "vendor@example.com", "vendor")
	client := register(t, app, "client@example.com", "client")

	rr := doJSON(t, app, http.MethodPost, "/api/bookings", "", map[string]string{
		"vendorId": "v1", "date": "2025-07-01",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous booking: %d, want 401", rr.Code)
	}
	if rr := doJSON(t, app, http.MethodGet, "/api/budget", vendor.Token, nil); rr.Code != http.StatusForbidden {
		t.Errorf("vendor budget: %d, want 403", rr.Code)
	}
	if rr := doJSON(t, app, http.MethodPost, "/api/vendor/apply", client.Token, nil); rr.Code != http.StatusForbidden {
		t.Errorf("client vendor apply: %d, want 403", rr.Code)
	}
	if rr := doJSON(t, app, http.MethodGet, "/api/admin/users", client.Token, nil); rr.Code != http.StatusForbidden {
		t.Errorf("client admin users: %d, want 403", rr.Code)
	}
}

func TestAdminRegistrationRequiresKey(t *testing.T) {
	app, _ := newTestApp(t)
	rr := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "mallory@example.com", "password": "secret123", "role": "admin", "adminKey": "wrong",
	})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("admin register with wrong key: %d, want 403", rr.Code)
	}
}

func TestTraditionsEndpoints(t *testing.T) {
	app, store := newTestApp(t)
	err := docstore.SaveAll(context.Background(), store, docstore.CollTraditions, []models.Tradition{
		{ID: 1, Title: "Outia", Region: "Tunis", Images: []string{"/traditions/outia.jpg"}},
		{ID: 2, Title: "Jelwa", Region: "Djerba", Images: []string{"https://cdn.example.com/jelwa.jpg"}},
	})
	if err != nil {
		t.Fatalf("seed traditions: %v", err)
	}

	rr := doJSON(t, app, http.MethodGet, "/api/traditions?region=tunis", "", nil)
	var list []models.Tradition
	decodeBody(t, rr, &list)
	if len(list) != 1 || list[0].ID != 1 {
		t.Fatalf("region filter = %+v", list)
	}
	if list[0].Images[0] != "http://example.com/traditions/outia.jpg" {
		t.Errorf("image not absolutized: %q", list[0].Images[0])
	}

	rr = doJSON(t, app, http.MethodGet, "/api/traditions/2", "", nil)
	var one models.Tradition
	decodeBody(t, rr, &one)
	if one.Images[0] != "https://cdn.example.com/jelwa.jpg" {
		t.Errorf("absolute image rewritten: %q", one.Images[0])
	}

	if rr := doJSON(t, app, http.MethodGet, "/api/traditions/abc", "", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("bad id: %d, want 400", rr.Code)
	}
	if rr := doJSON(t, app, http.MethodGet, "/api/traditions/99", "", nil); rr.Code != http.StatusNotFound {
		t.Errorf("missing id: %d, want 404", rr.Code)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	app, _ := newTestApp(t)
	rr := doJSON(t, app, http.MethodGet, "/api/nope", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
	var body map[string]any
	decodeBody(t, rr, &body)
	if msg, ok := body["error"].(string); !ok || msg == "" {
		t.Errorf("no JSON error body: %s", rr.Body.String())
	}
}
