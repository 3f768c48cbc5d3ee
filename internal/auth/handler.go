package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/redmonkez12/todo-api/internal/httputil"
	"github.com/redmonkez12/todo-api/internal/logging"
)

// Handler contains HTTP handlers for the user/auth endpoints
type Handler struct {
	service      *Service
	logger       *logging.Logger
	isProduction bool
}

func NewHandler(service *Service, logger *logging.Logger, isProduction bool) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		isProduction: isProduction,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses. Only the identifier and
// email are ever exposed.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// UserEnvelope wraps a user for API responses
type UserEnvelope struct {
	User UserResponse `json:"user"`
}

// SuccessResponse represents a bare success acknowledgement
type SuccessResponse struct {
	Success bool `json:"success"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new account. The auth token is returned in the x-auth response header.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration credentials"
// @Success      201 {object} UserEnvelope
// @Failure      400 {object} httputil.ErrorResponse "Invalid email, duplicate email, or short password"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /users [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	newUser, token, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		var invalidEmail *InvalidEmailError
		var duplicateEmail *DuplicateEmailError
		switch {
		case errors.Is(err, ErrEmailRequired),
			errors.Is(err, ErrPasswordTooShort),
			errors.As(err, &invalidEmail),
			errors.As(err, &duplicateEmail):
			logger.Warn("registration failed: validation error", "error", err.Error())
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		default:
			logger.Error("registration failed: internal error", "error", err.Error())
			h.respondInternalError(w, "failed to register user", err)
		}
		return
	}

	logger.Info("user registered", "user_id", newUser.ID)

	w.Header().Set(AuthHeader, token)
	httputil.RespondJSON(w, UserEnvelope{
		User: UserResponse{ID: newUser.ID, Email: newUser.Email},
	}, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate and receive a fresh auth token in the x-auth response header.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} UserEnvelope
// @Failure      400 {object} httputil.ErrorResponse "Email or password incorrect"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	existingUser, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		h.respondInternalError(w, "failed to login", err)
		return
	}

	logger.Info("user logged in", "user_id", existingUser.ID)

	w.Header().Set(AuthHeader, token)
	httputil.RespondJSON(w, UserEnvelope{
		User: UserResponse{ID: existingUser.ID, Email: existingUser.Email},
	}, http.StatusOK)
}

// Me returns the authenticated user
// @Summary      Get current user
// @Tags         users
// @Produce      json
// @Param        x-auth header string true "Auth token"
// @Success      200 {object} UserEnvelope
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Router       /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, ErrNotAuthenticated.Error(), http.StatusUnauthorized)
		return
	}

	httputil.RespondJSON(w, UserEnvelope{
		User: UserResponse{ID: currentUser.ID, Email: currentUser.Email},
	}, http.StatusOK)
}

// RevokeToken logs out the current session by deleting the presented token
// @Summary      Revoke the current auth token
// @Tags         users
// @Produce      json
// @Param        x-auth header string true "Auth token"
// @Success      200 {object} SuccessResponse
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /users/me/token [delete]
func (h *Handler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, ErrNotAuthenticated.Error(), http.StatusUnauthorized)
		return
	}
	token, ok := GetTokenFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, ErrNotAuthenticated.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.service.RevokeToken(r.Context(), currentUser.ID, token); err != nil {
		logger.Error("failed to revoke token", "error", err.Error())
		h.respondInternalError(w, "failed to revoke token", err)
		return
	}

	logger.Info("token revoked", "user_id", currentUser.ID)

	httputil.RespondJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}

// respondInternalError hides internal detail in production responses
func (h *Handler) respondInternalError(w http.ResponseWriter, message string, err error) {
	if h.isProduction {
		httputil.RespondError(w, message, http.StatusInternalServerError)
		return
	}
	httputil.RespondErrorWithDetail(w, message, err.Error(), http.StatusInternalServerError)
}
