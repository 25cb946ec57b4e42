package handlers

import (
	"net/http"
	"strings"

	"github.com/moredevelopers26/chattest/internal/api/middleware"
	"github.com/moredevelopers26/chattest/internal/models"
)

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email string `json:"email"`
}

// SignupRequest represents the signup request body.
type SignupRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionResponse carries the signed-in user.
type SessionResponse struct {
	User    models.User     `json:"user"`
	Storage StorageResponse `json:"storage"`
}

// Login opens a session for the user registered with the given email.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		h.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	u, res, err := h.chat.Login(r.Context(), email)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, SessionResponse{User: u, Storage: res})
}

// Signup registers a new user and signs them in.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := sanitizeName(req.Name)
	if name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	email := strings.TrimSpace(req.Email)
	if !isValidEmail(email) {
		h.Error(w, http.StatusBadRequest, "invalid email format")
		return
	}

	u, res := h.chat.Signup(r.Context(), name, email)
	h.JSON(w, http.StatusCreated, SessionResponse{User: u, Storage: res})
}

// Logout ends the session. Logging out twice is harmless.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	res := h.chat.Logout(r.Context())
	h.JSON(w, http.StatusOK, MutationResponse{Storage: res})
}

// Me returns the signed-in user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u := middleware.GetUserFromContext(r.Context())
	h.JSON(w, http.StatusOK, u)
}
