package handlers

import (
	"net/http"

	"github.com/dkarpov/freedomwall/internal/handlers/middleware"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authHandler *AuthHandler,
	wallHandler *WallHandler,
	authMiddleware *middleware.Auth,
	mds ...func(next http.Handler) http.Handler,
) http.Handler {
	withAuth := authMiddleware.Auth

	apiuser := http.NewServeMux()
	apiuser.HandleFunc("POST /register", authHandler.register)
	apiuser.HandleFunc("POST /login", authHandler.login)
	apiuser.HandleFunc("POST /refresh", authHandler.refresh)
	apiuser.Handle("GET /me", withAuth(handleUserMe()))

	apiwall := http.NewServeMux()
	apiwall.HandleFunc("GET /posts", wallHandler.list)
	apiwall.Handle("POST /posts", withAuth(http.HandlerFunc(wallHandler.create)))
	apiwall.Handle("DELETE /posts/{postID}", withAuth(http.HandlerFunc(wallHandler.delete)))

	root := http.NewServeMux()
	root.Handle("/api/user/", http.StripPrefix("/api/user", apiuser))
	root.Handle("/api/wall/", http.StripPrefix("/api/wall", apiwall))

	return chain(root, mds...)
}
