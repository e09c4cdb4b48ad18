package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eersi/marketplace/internal/apperr"
	"github.com/eersi/marketplace/internal/auth"
	"github.com/eersi/marketplace/internal/docstore"
	"github.com/eersi/marketplace/internal/httpx"
	"github.com/eersi/marketplace/internal/models"
	"github.com/eersi/marketplace/internal/validation"
)

// AuthHandler serves registration, login and identity echo.
type AuthHandler struct {
	store    *docstore.Store
	tokens   *auth.Tokens
	adminKey string
}

func NewAuthHandler(store *docstore.Store, tokens *auth.Tokens, adminKey string) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, adminKey: adminKey}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	AdminKey string `json:"adminKey"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register creates a user. Role defaults to client; the admin role is gated
// by the shared registration key when one is configured.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	v := validation.Violations{}
	validation.Required("email", req.Email, v)
	validation.Required("password", req.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "email and password are required", v)
		return
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	switch role {
	case models.RoleClient, models.RoleVendor, models.RoleAdmin:
	default:
		role = models.RoleClient
	}
	if role == models.RoleAdmin && h.adminKey != "" && req.AdminKey != h.adminKey {
		httpx.Error(w, apperr.Forbidden("Invalid admin registration key"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}

	_, err = docstore.Update(r.Context(), h.store, docstore.CollUsers,
		func(users []models.User) ([]models.User, error) {
			for _, u := range users {
				if u.Email == user.Email {
					return nil, apperr.Conflict("Email already registered")
				}
			}
			return append(users, user), nil
		})
	if err != nil {
		httpx.Error(w, err)
		return
	}

	token, err := h.tokens.Sign(user)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{Token: token, User: user.Sanitize()})
}

// Login verifies credentials and issues a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.Error(w, apperr.Validation("email and password are required"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	users, err := docstore.LoadAll[models.User](r.Context(), h.store, docstore.CollUsers)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	for _, u := range users {
		if u.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			break
		}
		token, err := h.tokens.Sign(u)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, tokenResponse{Token: token, User: u.Sanitize()})
		return
	}
	httpx.Error(w, apperr.Unauthorized("Invalid credentials"))
}

// Me echoes the identity carried by the token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{"user": id})
}
