package handler

import (
	"net/http"

	"github.com/ijo-project/ijo-backend/internal/api/middleware"
	"github.com/ijo-project/ijo-backend/internal/api/request"
	"github.com/ijo-project/ijo-backend/internal/api/response"
	"github.com/ijo-project/ijo-backend/internal/services/auth"
)

// AuthHandler handles registration, login and the caller's profile
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	account, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		SchoolClass: req.SchoolClass,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.RegisterResponse{
		Message: "Registration succeeded, waiting for admin approval",
		UserID:  string(account.ID),
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.LoginResponseFromSession(session))
}

// Profile handles GET /api/v1/auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	profile, err := h.authService.Profile(r.Context(), account.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.ProfileFromService(profile))
}
