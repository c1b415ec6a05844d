package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"oee-board/internal/auth"
	"oee-board/internal/storage"
)

type UserProvider interface {
	GetUserByEmail(ctx context.Context, email string) (*storage.User, error)
}

type TokenIssuer interface {
	Issue(u storage.User) (string, error)
}

type Response struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login checks form credentials (username, password) and returns a bearer token.
func Login(log *slog.Logger, users UserProvider, issuer TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.Login"

		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		email := r.PostForm.Get("username")
		password := r.PostForm.Get("password")
		if email == "" || password == "" {
			http.Error(w, "username and password are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := users.GetUserByEmail(ctx, email)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to load user")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if user == nil || !user.IsActive || !auth.CheckPassword(user.HashedPassword, password) {
			log.With(slog.String("op", op), slog.String("email", email)).Warn("rejected login")
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := issuer.Issue(*user)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to issue token")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Response{AccessToken: token, TokenType: "bearer"})
	}
}
