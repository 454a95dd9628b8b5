package wildlife

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SyncJob tracks the progress of an admin-triggered sync run.
type SyncJob struct {
	ID              string        `json:"id"`
	Status          string        `json:"status"` // "running", "completed", "completed_with_errors"
	TotalLocations  int           `json:"total_locations"`
	Completed       int           `json:"completed"`
	Failed          int           `json:"failed"`
	CurrentLocation string        `json:"current_location,omitempty"`
	Summaries       []SyncSummary `json:"summaries,omitempty"`
	StartedAt       time.Time     `json:"started_at"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
}

// StartSync handles POST /admin/sync
// Accepts {"location_ids": ["..."]}; an empty list syncs every location.
func (h *Handlers) StartSync(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LocationIDs []string `json:"location_ids"`
	}
	if r.Body != nil {
		// Body is optional; an empty POST syncs everything.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	ctx := r.Context()
	var locs []Location
	if len(body.LocationIDs) == 0 {
		all, err := h.store.Locations(ctx)
		if err != nil {
			http.Error(w, "Failed to fetch locations", http.StatusInternalServerError)
			return
		}
		locs = all
	} else {
		for _, raw := range body.LocationIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				http.Error(w, "Invalid location id: "+raw, http.StatusBadRequest)
				return
			}
			loc, err := h.store.Location(ctx, id)
			if err != nil {
				http.Error(w, "Unknown location: "+raw, http.StatusNotFound)
				return
			}
			locs = append(locs, *loc)
		}
	}

	if len(locs) == 0 {
		http.Error(w, "No locations to sync", http.StatusBadRequest)
		return
	}

	job := &SyncJob{
		ID:             uuid.New().String(),
		Status:         "running",
		TotalLocations: len(locs),
		StartedAt:      time.Now(),
	}

	h.jobsMu.Lock()
	h.jobs[job.ID] = job
	h.jobsMu.Unlock()

	go h.runSync(job, locs)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"job_id": job.ID,
		"status": "running",
	})
}

// runSync processes locations sequentially; the API client's own rate
// limiter paces the upstream calls.
func (h *Handlers) runSync(job *SyncJob, locs []Location) {
	ctx := context.Background()

	log.Printf("[admin] job=%s starting sync of %d locations", job.ID, len(locs))

	for _, loc := range locs {
		h.jobsMu.Lock()
		job.CurrentLocation = loc.Name
		h.jobsMu.Unlock()

		summary, err := h.syncer.SyncLocation(ctx, loc)

		h.jobsMu.Lock()
		if err != nil {
			log.Printf("[admin] job=%s location %s failed: %v", job.ID, loc.Name, err)
			job.Failed++
		} else {
			job.Completed++
			job.Summaries = append(job.Summaries, summary)
		}
		h.jobsMu.Unlock()
	}

	now := time.Now()
	h.jobsMu.Lock()
	job.CurrentLocation = ""
	job.CompletedAt = &now
	if job.Failed > 0 {
		job.Status = "completed_with_errors"
	} else {
		job.Status = "completed"
	}
	h.jobsMu.Unlock()

	log.Printf("[admin] job=%s finished: completed=%d failed=%d", job.ID, job.Completed, job.Failed)
}

// GetSyncJob handles GET /admin/sync/{jobID}
func (h *Handlers) GetSyncJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	h.jobsMu.Lock()
	job, ok := h.jobs[jobID]
	var snapshot SyncJob
	if ok {
		snapshot = *job
		snapshot.Summaries = append([]SyncSummary(nil), job.Summaries...)
	}
	h.jobsMu.Unlock()

	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, snapshot)
}

// ListSyncJobs handles GET /admin/sync
func (h *Handlers) ListSyncJobs(w http.ResponseWriter, r *http.Request) {
	h.jobsMu.Lock()
	jobs := make([]SyncJob, 0, len(h.jobs))
	for _, job := range h.jobs {
		snapshot := *job
		snapshot.Summaries = append([]SyncSummary(nil), job.Summaries...)
		jobs = append(jobs, snapshot)
	}
	h.jobsMu.Unlock()

	writeJSON(w, jobs)
}
