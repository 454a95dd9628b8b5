package wildlife

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) SetupRoutes(adminMW func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Get("/latest", h.GetLatestObservation)
	r.Get("/locations", h.ListLocations)
	r.Get("/locations/{id}/trails", h.ListTrails)

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminMW)
		r.Post("/sync", h.StartSync)
		r.Get("/sync", h.ListSyncJobs)
		r.Get("/sync/{jobID}", h.GetSyncJob)
	})

	return r
}
