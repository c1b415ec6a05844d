package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	authn "oee-board/internal/auth"
)

type TokenVerifier interface {
	Verify(token string) (authn.Identity, error)
}

// Bearer requires a valid access token and puts its identity into the request context.
func Bearer(log *slog.Logger, v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(w, "Not authenticated")
				return
			}

			id, err := v.Verify(strings.TrimSpace(token))
			if err != nil {
				log.Debug("rejected bearer token", slog.String("error", err.Error()))
				if errors.Is(err, authn.ErrTokenExpired) {
					unauthorized(w, "Token expired")
					return
				}
				unauthorized(w, "Could not validate credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(authn.WithIdentity(r.Context(), id)))
		})
	}
}

// Static signs every request in as id. Used when the deployment runs without login.
func Static(id authn.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(authn.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin lets through only identities with the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := authn.FromContext(r.Context())
		if !ok {
			unauthorized(w, "Not authenticated")
			return
		}
		if !id.IsAdmin() {
			http.Error(w, "The user doesn't have enough privileges", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, msg, http.StatusUnauthorized)
}
