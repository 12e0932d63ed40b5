package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	jwtutil "github.com/Dias221467/Lingo_Connect/pkg/jwt"
	"github.com/Dias221467/Lingo_Connect/pkg/logger"
)

type contextKey string

const userContextKey contextKey = "user"

// TokenCookie is the cookie the login handler stores the JWT in.
const TokenCookie = "jwt"

// AuthMiddleware rejects requests without a valid token and stores its claims in the request context.
// The token is read from "Authorization: Bearer <token>" or the jwt cookie.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				unauthorized(w, "Unauthorized - No token provided")
				return
			}

			claims, err := jwtutil.ValidateToken(token, secret)
			if err != nil {
				logger.Log.WithError(err).Warn("Rejected invalid token")
				unauthorized(w, "Unauthorized - Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// WithUser returns a copy of ctx carrying claims.
func WithUser(ctx context.Context, claims *jwtutil.Claims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

// GetUserFromContext returns the authenticated user's claims, or nil.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, _ := ctx.Value(userContextKey).(*jwtutil.Claims)
	return claims
}
