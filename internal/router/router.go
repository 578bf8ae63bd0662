// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// agrimart storefront and admin console.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agrimart/internal/handlers"
	"agrimart/internal/middleware"
	"agrimart/internal/session"
	"agrimart/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Embedded static assets.
	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Account routes — CSRF-protected forms, shared by customers and admins.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)

		r.Get("/login", auth.LoginPage)
		r.Post("/login", auth.LoginSubmit)
		r.Get("/register", auth.RegisterPage)
		r.Post("/register", auth.RegisterSubmit)
		r.Post("/logout", auth.Logout)
	})

	// Admin console — authentication, 2FA, and admin role required.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)

		// 2FA — requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", auth.TwoFASetupPage)
			r.Post("/2fa/setup", auth.TwoFASetupSubmit)
			r.Get("/2fa/verify", auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", auth.TwoFAVerifySubmit)
		})

		// Fully authenticated admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Use(middleware.RequireAdmin)

			r.Get("/", admin.Dashboard)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", admin.Categories)
				r.Get("/new", admin.CategoryNew)
				r.Post("/new", admin.CategoryCreate)
				r.Get("/{id}/edit", admin.CategoryEdit)
				r.Post("/{id}/edit", admin.CategoryUpdate)
				r.Post("/{id}/delete", admin.CategoryDelete)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", admin.Products)
				r.Get("/new", admin.ProductNew)
				r.Post("/new", admin.ProductCreate)
				r.Get("/{id}/edit", admin.ProductEdit)
				r.Post("/{id}/edit", admin.ProductUpdate)
				r.Post("/{id}/delete", admin.ProductDelete)
			})

			r.Post("/media/upload", admin.MediaUpload)
		})
	})

	// Public storefront.
	r.Get("/", public.Homepage)
	r.Get("/san-pham/{id}", public.Product)
	r.Get("/danh-muc/{slug}", public.Category)
	r.Get("/tim-kiem", public.Search)

	r.NotFound(public.NotFound)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
