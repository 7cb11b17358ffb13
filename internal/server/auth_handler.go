package server

import (
	"net/http"

	"github.com/jonathan/interntrack/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	server      *Server
	userService *UserService
	jwtService  *JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(s *Server, userService *UserService, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		server:      s,
		userService: userService,
		jwtService:  jwtService,
	}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req types.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.server.serviceError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.server.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.server.serviceError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.server.serviceError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.server.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.server.serviceError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *types.User) {
	token, err := h.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		h.server.logger.Error("failed to generate token", "path", r.URL.Path, "error", err)
		h.server.errorResponse(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.server.jsonResponse(w, status, types.LoginResponse{
		Token: token,
		User:  user,
	})
}
