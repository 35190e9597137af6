package middleware

import (
	"context"
	"net/http"

	"github.com/dkarpov/freedomwall/internal/handlers/render"
	"github.com/dkarpov/freedomwall/internal/handlers/userctx"
	"github.com/dkarpov/freedomwall/internal/models"
)

type authService interface {
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

type Auth struct {
	authService authService
}

func NewAuth(as authService) *Auth {
	return &Auth{authService: as}
}

// Auth resolves the request user and stores it in the request context
// Unauthenticated requests are rejected before reaching the handler
func (m *Auth) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.authService.Auth(r.Context(), r)
		if err != nil {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := userctx.New(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
