package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"teamcal-backend/application/services"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/pkg/auth"
	"teamcal-backend/pkg/common"
	pkgerrors "teamcal-backend/pkg/errors"
	"teamcal-backend/pkg/utils"
)

// maxBodyBytes caps request bodies across all handlers
const maxBodyBytes = 1 << 20

// UserHandler handles user account HTTP requests
type UserHandler struct {
	users  *services.UserService
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		errors: errorHandler,
		logger: logger,
	}
}

// RegisterUserRequest is the body for creating a user account
type RegisterUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

// UpdateUserRequest is the partial body for updating a user profile
type UpdateUserRequest struct {
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Name  *string `json:"name,omitempty"`
}

// UserResponse is the wire shape of a user account
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toUserResponse(user *entities.User) UserResponse {
	return UserResponse{
		ID:        user.ID().String(),
		Email:     user.Email().String(),
		Name:      user.Name(),
		Version:   user.Version(),
		CreatedAt: utils.FormatRFC3339(user.CreatedAt()),
		UpdatedAt: utils.FormatRFC3339(user.UpdatedAt()),
	}
}

// Register handles POST /users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), services.RegisterUserInput{
		Email: req.Email,
		Name:  req.Name,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toUserResponse(user))
}

// Me handles GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.users.GetByID(r.Context(), userCtx.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

// GetUser handles GET /users/{userID}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

// LookupByEmail handles GET /users?email=
// Members invite by address, so any authenticated caller may resolve an
// email to an account.
func (h *UserHandler) LookupByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "The email query parameter is required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateMe handles PUT /users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateUserRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Update(r.Context(), userCtx.UserID, services.UpdateUserInput{
		Email: req.Email,
		Name:  req.Name,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

// DeleteMe handles DELETE /users/me
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.users.Delete(r.Context(), userCtx.UserID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
