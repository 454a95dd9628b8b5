package wildlife

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/TrailSight/TS-Backend/internal/wildlife/inat"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handlers carries the HTTP surface's dependencies explicitly; there is
// no package-level client or database state.
type Handlers struct {
	store  *Store
	client *inat.Client
	syncer *Syncer

	jobsMu sync.Mutex
	jobs   map[string]*SyncJob
}

func NewHandlers(store *Store, client *inat.Client, syncer *Syncer) *Handlers {
	return &Handlers{
		store:  store,
		client: client,
		syncer: syncer,
		jobs:   make(map[string]*SyncJob),
	}
}

// latestOut is the normalized projection external consumers expect from
// the demonstration endpoint.
type latestOut struct {
	SpeciesCommonName string   `json:"species_common_name"`
	ScientificName    string   `json:"scientific_name"`
	ObservationID     int64    `json:"observation_id"`
	URL               string   `json:"url"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	ObservedOn        string   `json:"observed_on"`
	Description       string   `json:"description"`
	Observer          string   `json:"observer"`
	ObserverIcon      string   `json:"observer_icon"`
	Image             string   `json:"image"`
	LocationName      string   `json:"location_name"`
}

// GetLatestObservation handles GET /latest — a read-only example of the
// output shape, backed by a live API call for the requested point.
func (h *Handlers) GetLatestObservation(w http.ResponseWriter, r *http.Request) {
	lat := queryFloat(r, "lat", 40.7)
	lng := queryFloat(r, "lng", -74.0)
	radius := queryFloat(r, "radius", 5)

	obs, err := h.client.LatestObservation(r.Context(), lat, lng, radius)
	if err != nil {
		log.Printf("[wildlife] latest observation fetch failed: %v", err)
		http.Error(w, "Upstream observation API unavailable", http.StatusBadGateway)
		return
	}
	if obs == nil {
		writeJSON(w, map[string]string{"message": "No results found"})
		return
	}

	out := latestOut{
		ObservationID: obs.ID,
		URL:           obs.URI,
		ObservedOn:    obs.ObservedOn,
		Description:   obs.Description,
		LocationName:  obs.PlaceGuess,
	}
	if obs.GeoJSON.Valid() {
		lat, lng := obs.GeoJSON.Lat(), obs.GeoJSON.Lng()
		out.Latitude, out.Longitude = &lat, &lng
	}
	if obs.Taxon != nil {
		out.SpeciesCommonName = inat.TitleCommonName(obs.Taxon.PreferredCommonName)
		out.ScientificName = obs.Taxon.Name
		if obs.Taxon.DefaultPhoto != nil {
			out.Image = obs.Taxon.DefaultPhoto.SquareURL
		}
	}
	if out.Image == "" && len(obs.Photos) > 0 {
		out.Image = obs.Photos[0].URL
	}
	if obs.User != nil {
		out.Observer = obs.User.Login
		out.ObserverIcon = obs.User.IconURL
	}

	writeJSON(w, out)
}

// ListLocations handles GET /locations.
func (h *Handlers) ListLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.store.Locations(r.Context())
	if err != nil {
		log.Printf("[wildlife] list locations failed: %v", err)
		http.Error(w, "Failed to fetch locations", http.StatusInternalServerError)
		return
	}
	writeJSON(w, locs)
}

// ListTrails handles GET /locations/{id}/trails.
func (h *Handlers) ListTrails(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid location id", http.StatusBadRequest)
		return
	}

	trails, err := h.store.Trails(r.Context(), id)
	if err != nil {
		log.Printf("[wildlife] list trails failed: %v", err)
		http.Error(w, "Failed to fetch trails", http.StatusInternalServerError)
		return
	}
	writeJSON(w, trails)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return f
}
