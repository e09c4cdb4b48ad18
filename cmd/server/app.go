package main

import (
	"net/http"

	"github.com/eersi/marketplace/internal/auth"
	"github.com/eersi/marketplace/internal/handlers"
	"github.com/eersi/marketplace/internal/httpx"
	"github.com/eersi/marketplace/internal/models"
)

// Handlers bundles every route handler the app mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Categories    *handlers.CategoriesHandler
	Vendors       *handlers.VendorsHandler
	Bookings      *handlers.BookingsHandler
	Budget        *handlers.BudgetHandler
	VendorPortal  *handlers.VendorPortalHandler
	Admin         *handlers.AdminHandler
	Notifications *handlers.NotificationsHandler
	Traditions    *handlers.TraditionsHandler
}

// App is the main application handler that sets up all routes.
type App struct {
	mux    *http.ServeMux
	tokens *auth.Tokens
	h      Handlers
}

// NewApp creates a new application with all routes configured.
func NewApp(tokens *auth.Tokens, h Handlers) *App {
	app := &App{mux: http.NewServeMux(), tokens: tokens, h: h}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Global middleware: CORS preflight + bearer identity extraction.
	handler := withCORS(a.tokens.Middleware(a.mux))
	handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	requireAuth := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}
	clientOnly := auth.RequireRole(models.RoleClient)
	vendorOnly := auth.RequireRole(models.RoleVendor)
	adminOnly := auth.RequireRole(models.RoleAdmin)

	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.mux.HandleFunc("POST /api/auth/register", a.h.Auth.Register)
	a.mux.HandleFunc("POST /api/auth/login", a.h.Auth.Login)
	a.mux.HandleFunc("GET /api/categories", a.h.Categories.List)
	a.mux.HandleFunc("GET /api/vendors", a.h.Vendors.List)
	a.mux.HandleFunc("GET /api/vendors/{id}", a.h.Vendors.Get)
	a.mux.HandleFunc("GET /api/traditions", a.h.Traditions.List)
	a.mux.HandleFunc("GET /api/traditions/{id}", a.h.Traditions.Get)

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /api/auth/me", requireAuth(a.h.Auth.Me))

	a.mux.Handle("GET /api/bookings", requireAuth(a.h.Bookings.List))
	a.mux.Handle("POST /api/bookings", requireAuth(a.h.Bookings.Create))
	a.mux.Handle("DELETE /api/bookings/{id}", requireAuth(a.h.Bookings.Cancel))
	a.mux.Handle("POST /api/bookings/{id}/confirm", requireAuth(a.h.Bookings.Confirm))

	a.mux.Handle("GET /api/notifications", requireAuth(a.h.Notifications.List))
	a.mux.Handle("PATCH /api/notifications/{id}/read", requireAuth(a.h.Notifications.MarkRead))
	a.mux.Handle("PATCH /api/notifications/read-all/all", requireAuth(a.h.Notifications.MarkAllRead))

	// Budget is a client-only feature.
	a.mux.Handle("GET /api/budget", clientOnly(http.HandlerFunc(a.h.Budget.Get)))
	a.mux.Handle("PUT /api/budget", clientOnly(http.HandlerFunc(a.h.Budget.Put)))
	a.mux.Handle("POST /api/budget/record", clientOnly(http.HandlerFunc(a.h.Budget.Record)))

	// ─────────────────────────────────────────────────────────────────────────
	// Vendor portal
	// ─────────────────────────────────────────────────────────────────────────
	vp := a.h.VendorPortal
	a.mux.Handle("POST /api/vendor/apply", vendorOnly(http.HandlerFunc(vp.Apply)))
	a.mux.Handle("GET /api/vendor/me", vendorOnly(http.HandlerFunc(vp.Me)))
	a.mux.Handle("PATCH /api/vendor/me", vendorOnly(http.HandlerFunc(vp.PatchMe)))
	a.mux.Handle("POST /api/vendor/services", vendorOnly(http.HandlerFunc(vp.CreateService)))
	a.mux.Handle("GET /api/vendor/services", vendorOnly(http.HandlerFunc(vp.ListServices)))
	a.mux.Handle("PATCH /api/vendor/services/{id}", vendorOnly(http.HandlerFunc(vp.UpdateService)))
	a.mux.Handle("DELETE /api/vendor/services/{id}", vendorOnly(http.HandlerFunc(vp.DeleteService)))
	a.mux.Handle("GET /api/vendor/bookings", vendorOnly(http.HandlerFunc(vp.Bookings)))
	a.mux.Handle("PATCH /api/vendor/bookings/{id}/status", vendorOnly(http.HandlerFunc(vp.SetBookingStatus)))

	// ─────────────────────────────────────────────────────────────────────────
	// Admin
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /api/admin/vendors/pending", adminOnly(http.HandlerFunc(a.h.Admin.PendingVendors)))
	a.mux.Handle("PATCH /api/admin/vendors/{id}/approve", adminOnly(http.HandlerFunc(a.h.Admin.Approve)))
	a.mux.Handle("PATCH /api/admin/vendors/{id}/reject", adminOnly(http.HandlerFunc(a.h.Admin.Reject)))
	a.mux.Handle("GET /api/admin/users", adminOnly(http.HandlerFunc(a.h.Admin.Users)))

	// helpful API 404
	a.mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "API route not found", nil)
	})
}

// withCORS allows any origin with credentials and answers preflights.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
