package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"teamcal-backend/pkg/auth"
	"teamcal-backend/pkg/common"
	"teamcal-backend/pkg/extensions"
)

// Authenticate validates the bearer token on every request and places the
// caller's identity in the request context. Tokens carry identity only;
// what the caller may do inside a team is resolved from membership rows
// by the services, never from token claims.
func Authenticate(validator *auth.JWTValidator, hooks *extensions.HookManager, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				respondUnauthorized(w, "Missing authentication token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("ip", getClientIP(r)),
					zap.String("path", r.URL.Path),
				)

				switch err {
				case auth.ErrExpiredToken:
					respondUnauthorized(w, "Token has expired")
				case auth.ErrInvalidSignature:
					respondUnauthorized(w, "Invalid token signature")
				default:
					respondUnauthorized(w, "Invalid token")
				}
				return
			}

			userCtx := &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Name:   claims.Name,
			}

			ctx := auth.SetUserInContext(r.Context(), userCtx)
			ctx = common.WithUserID(ctx, claims.UserID)

			if hooks != nil {
				hooks.ExecuteAsync(ctx, extensions.HookAfterAuthentication, extensions.HookData{
					EntityID:  claims.UserID,
					Operation: "authenticate",
					ActorID:   claims.UserID,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the JWT from the Authorization header or, for
// clients that cannot set headers, the auth cookie or query string
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return authHeader
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}

	return r.URL.Query().Get("token")
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	// X-Forwarded-For lists the original client first
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusUnauthorized, message)
}

// respondWithError sends an error response with a status-appropriate code
func respondWithError(w http.ResponseWriter, status int, message string) {
	code := common.StandardErrorCodes.InternalError
	switch status {
	case http.StatusBadRequest:
		code = common.StandardErrorCodes.BadRequest
	case http.StatusUnauthorized:
		code = common.StandardErrorCodes.Unauthorized
	case http.StatusForbidden:
		code = common.StandardErrorCodes.Forbidden
	case http.StatusTooManyRequests:
		code = common.StandardErrorCodes.TooManyRequests
	}
	common.RespondError(w, status, code, message)
}
