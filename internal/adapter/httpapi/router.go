package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured. Every /api route
// sits behind the JWT authenticator; CORS is open to the configured frontend
// origins.
func NewRouter(h *Handler, jwtSecret []byte, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticator(jwtSecret))

		r.Route("/spaces", func(r chi.Router) {
			r.Get("/", h.ListSpaces)
			r.Post("/", h.CreateSpace)
			r.Post("/{spaceID}/members", h.AddMember)
			r.Get("/{spaceID}/reserves", h.ListReserves)
			r.Post("/{spaceID}/reserves", h.CreateReserve)
		})

		r.Route("/reserves/{reserveID}", func(r chi.Router) {
			r.Get("/", h.GetReserve)
			r.Put("/", h.UpdateReserve)
			r.Delete("/", h.DeleteReserve)

			r.Route("/movements", func(r chi.Router) {
				r.Get("/", h.ListMovements)
				r.Post("/", h.CreateMovement)
				r.Delete("/{movementID}", h.DeleteMovement)
			})
		})
	})

	return r
}
