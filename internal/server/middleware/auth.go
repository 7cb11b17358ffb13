// Package middleware holds the bearer-token authentication used by the protected API routes.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Error messages returned by AuthMiddleware.
const (
	MsgMissingToken = "Missing token"
	MsgInvalidToken = "Invalid/expired token"
)

// ContextKey types the values this package stores in a request context.
type ContextKey string

const userIDKey ContextKey = "userID"

// TokenValidator verifies a raw token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (UserIDGetter, error)
}

// UserIDGetter exposes the account a token was issued to.
type UserIDGetter interface {
	GetUserID() uuid.UUID
}

// AuthMiddleware creates middleware that validates bearer tokens and adds the user ID to
// the request context. A missing or empty bearer token is rejected with MsgMissingToken;
// any token that fails validation with MsgInvalidToken.
func AuthMiddleware(jwtService TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r.Header.Get("Authorization"))
			if tokenString == "" {
				unauthorized(w, MsgMissingToken)
				return
			}

			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				unauthorized(w, MsgInvalidToken)
				return
			}

			userID := claims.GetUserID()
			if userID == uuid.Nil {
				unauthorized(w, MsgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// bearerToken returns the token of a "Bearer <token>" header, matching the scheme
// case-insensitively. Any other shape yields "".
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// unauthorized writes the same {"error": ...} shape as the server's error responses.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{message})
}

// WithUserID returns a copy of ctx carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// ErrNoUser is returned by GetUserID for requests that did not pass AuthMiddleware.
var ErrNoUser = errors.New("no authenticated user in request context")

// GetUserID returns the user ID AuthMiddleware stored on r.
func GetUserID(r *http.Request) (uuid.UUID, error) {
	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrNoUser
	}
	return userID, nil
}
