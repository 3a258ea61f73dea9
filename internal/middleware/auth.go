package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenValidator resolves a session token to a user ID
type TokenValidator interface {
	ValidateJWT(token string) (int64, error)
}

// AuthMiddleware requires a valid session. The token is read from the session
// cookie first and from an "Authorization: Bearer" header otherwise.
func AuthMiddleware(validator TokenValidator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r, cookieName)
			if token == "" {
				respondUnauthorized(w)
				return
			}

			userID, err := validator.ValidateJWT(token)
			if err != nil {
				respondUnauthorized(w)
				return
			}

			ctx := WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionToken extracts the session token from the cookie or the Authorization header
func SessionToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// WithUserID stores the authenticated user ID in ctx
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts user ID from context. It returns 0 when unauthenticated.
func GetUserID(ctx context.Context) int64 {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return 0
	}
	return userID
}

func respondUnauthorized(w http.ResponseWriter) {
	respondError(w, "Unauthorized", http.StatusUnauthorized)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"message":"` + message + `"}`))
}
