package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/creeeasy/online-store-sub000/internal/database"
	"github.com/creeeasy/online-store-sub000/internal/validate"
	"github.com/creeeasy/online-store-sub000/pkg/models"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validate.Login(&req); len(errs) > 0 {
		h.respondValidation(w, errs)
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			h.respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.WithError(err).Error("Login failed")
		h.respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	token, err := h.auth.CreateSession(r.Context(), user.ID, h.tokenTTL)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create session")
		h.respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.logger.WithField("email", user.Email).Info("User logged in")
	h.respond(w, http.StatusOK, "Login successful", models.AuthPayload{User: *user, Token: token}, nil)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validate.Register(&req); len(errs) > 0 {
		h.respondValidation(w, errs)
		return
	}

	user, err := h.auth.CreateUser(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			h.respondError(w, http.StatusConflict, "Email already registered")
			return
		}
		h.logger.WithError(err).Error("Registration failed")
		h.respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	token, err := h.auth.CreateSession(r.Context(), user.ID, h.tokenTTL)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create session")
		h.respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.logger.WithField("email", user.Email).Info("User registered")
	h.respond(w, http.StatusCreated, "Registration successful", models.AuthPayload{User: *user, Token: token}, nil)
}

// Me returns the authenticated user; requireAuth has already resolved it.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	h.respond(w, http.StatusOK, "User fetched", user, nil)
}

// ValidateToken is Me under a different contract: clients call it on startup
// to decide whether the stored token is still usable.
func (h *Handler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	h.respond(w, http.StatusOK, "Token valid", map[string]interface{}{"valid": true, "user": user}, nil)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		if err := h.auth.DeleteSession(r.Context(), token); err != nil {
			h.logger.WithError(err).Error("Failed to delete session")
			h.respondError(w, http.StatusInternalServerError, "Logout failed")
			return
		}
	}
	h.respond(w, http.StatusOK, "Logged out", nil, nil)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	newToken, user, err := h.auth.RefreshSession(r.Context(), token, h.tokenTTL)
	if err != nil {
		if errors.Is(err, database.ErrInvalidToken) {
			h.respondError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		h.logger.WithError(err).Error("Failed to refresh session")
		h.respondError(w, http.StatusInternalServerError, "Refresh failed")
		return
	}

	h.respond(w, http.StatusOK, "Token refreshed", models.AuthPayload{User: *user, Token: newToken}, nil)
}
