package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/dkarpov/freedomwall/internal/handlers"
	"github.com/dkarpov/freedomwall/internal/handlers/middleware"
	"github.com/dkarpov/freedomwall/internal/repository/postgres"
	"github.com/dkarpov/freedomwall/internal/service/auth"
	"github.com/dkarpov/freedomwall/internal/service/auth/tokenmanager"
	"github.com/dkarpov/freedomwall/internal/service/wall"
	"github.com/dkarpov/freedomwall/internal/testutil"
)

type Services struct {
	AuthService *auth.AuthService
	WallService *wall.WallService
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// The created transaction passed to inner function: so, you can safely use testutil.WithTx with it
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		// Initialize repositories
		userRepo := &postgres.UserRepo{DB: tx}
		refreshRepo := &postgres.RefreshTokenRepo{DB: tx}
		postRepo := &postgres.PostRepo{DB: tx}

		// Initialize services
		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"}, refreshRepo)
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{}, tokenManager, userRepo)
		require.NoError(t, err, "auth service starting error", err)

		ws := wall.NewService(postRepo)

		// Initialize handlers
		authHandler := handlers.NewAuth(as)
		wallHandler := handlers.NewWall(ws)
		authMiddleware := middleware.NewAuth(as)

		// Complete all together as router
		router := handlers.NewRouter(
			authHandler,
			wallHandler,
			authMiddleware,
		)

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			AuthService: as,
			WallService: ws,
		})
	})
}
