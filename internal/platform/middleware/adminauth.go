package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims are the JWT claims expected on tokens minted for the admin
// console. Role is carried for audit attribution, not authorization decisions.
type AdminClaims struct {
	AdminID string `json:"admin_id"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type contextKeyAdminID struct{}
type contextKeyAdminRole struct{}

// GetAdminID retrieves the authenticated admin identifier from the context.
// Returns empty string if the request did not pass RequireAdmin.
func GetAdminID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyAdminID{}).(string); ok {
		return v
	}
	return ""
}

// GetAdminRole retrieves the authenticated admin role from the context.
func GetAdminRole(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyAdminRole{}).(string); ok {
		return v
	}
	return ""
}

// RequireAdmin validates the Bearer token with the shared signing key and
// stores the admin identity in the request context for audit attribution.
func RequireAdmin(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	key := []byte(signingKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				unauthorized(w, "bearer token required")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

			claims := &AdminClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !token.Valid || claims.AdminID == "" {
				logger.WarnContext(r.Context(), "admin token rejected",
					"request_id", GetRequestID(r.Context()),
					"error", err,
				)
				unauthorized(w, "invalid admin token")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyAdminID{}, claims.AdminID)
			ctx = context.WithValue(ctx, contextKeyAdminRole{}, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
