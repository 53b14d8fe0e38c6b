package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"teamcal-backend/application/services"
	"teamcal-backend/pkg/auth"
	"teamcal-backend/pkg/common"
	pkgerrors "teamcal-backend/pkg/errors"
	"teamcal-backend/pkg/utils"
)

// AuthHandler issues and refreshes API tokens
type AuthHandler struct {
	issuer *auth.JWTGenerator
	users  *services.UserService
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(issuer *auth.JWTGenerator, users *services.UserService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		issuer: issuer,
		users:  users,
		errors: errorHandler,
		logger: logger,
	}
}

// TokenResponse carries a freshly minted token
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// DevTokenRequest is the body for minting a development token
type DevTokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RefreshToken handles POST /auth/refresh. The route sits behind the
// authentication middleware, so a refresh rotates a still-valid token;
// expired tokens need a fresh sign-in.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	token, err := h.issuer.GenerateToken(userCtx.UserID, userCtx.Email, userCtx.Name)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresIn: int(h.issuer.Expiry().Seconds()),
	})
}

// DevToken handles POST /auth/dev-token. Only mounted in development;
// it mints a token for any registered account so local clients can skip
// the identity provider.
func (h *AuthHandler) DevToken(w http.ResponseWriter, r *http.Request) {
	var req DevTokenRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	token, err := h.issuer.GenerateToken(user.ID().String(), user.Email().String(), user.Name())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Minted development token", zap.String("user_id", user.ID().String()))

	common.RespondJSON(w, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresIn: int(h.issuer.Expiry().Seconds()),
	})
}
