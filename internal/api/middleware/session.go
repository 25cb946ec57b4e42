package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/moredevelopers26/chattest/internal/models"
)

type contextKey string

const UserContextKey contextKey = "user"

// SessionSource reports the signed-in user.
type SessionSource interface {
	CurrentUser() (models.User, bool)
}

// LoadSession stores the session user, if any, in the request context.
func LoadSession(src SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := src.CurrentUser(); ok {
				r = r.WithContext(context.WithValue(r.Context(), UserContextKey, &u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests made while nobody is signed in.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) == nil {
			jsonError(w, http.StatusUnauthorized, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetUserFromContext retrieves the session user from the request context.
func GetUserFromContext(ctx context.Context) *models.User {
	u, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return u
}
