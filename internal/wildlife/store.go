package wildlife

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/TrailSight/TS-Backend/internal/geo"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// idChunkSize bounds IN-clause sizes when checking which ids already exist.
const idChunkSize = 100

// Store wraps the backing database for the wildlife tables.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Locations returns every known location.
func (s *Store) Locations(ctx context.Context) ([]Location, error) {
	var locs []Location
	if err := s.db.WithContext(ctx).Order("name").Find(&locs).Error; err != nil {
		return nil, fmt.Errorf("fetch locations: %w", err)
	}
	return locs, nil
}

// Location returns a single location by id.
func (s *Store) Location(ctx context.Context, id uuid.UUID) (*Location, error) {
	var loc Location
	if err := s.db.WithContext(ctx).First(&loc, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("fetch location %s: %w", id, err)
	}
	return &loc, nil
}

// Trails returns the trails belonging to a location, ascending by id.
func (s *Store) Trails(ctx context.Context, locationID uuid.UUID) ([]Trail, error) {
	var trails []Trail
	err := s.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("id").
		Find(&trails).Error
	if err != nil {
		return nil, fmt.Errorf("fetch trails for location %s: %w", locationID, err)
	}
	return trails, nil
}

// TrailCandidates loads a location's trails as parsed polylines for the
// matcher, sorted ascending by id so tie-breaks are reproducible. Trails
// with malformed geometry are skipped with a logged warning rather than
// failing the job.
func (s *Store) TrailCandidates(ctx context.Context, locationID uuid.UUID) ([]geo.TrailCandidate, error) {
	trails, err := s.Trails(ctx, locationID)
	if err != nil {
		return nil, err
	}

	candidates := make([]geo.TrailCandidate, 0, len(trails))
	for _, tr := range trails {
		line, err := geo.ParseLineString(tr.Geometry)
		if err != nil {
			log.Printf("[store] skipping trail %d: bad geometry: %v", tr.ID, err)
			continue
		}
		candidates = append(candidates, geo.TrailCandidate{ID: tr.ID, Line: line})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	return candidates, nil
}

// Watermark is the most recent known observation time for a location.
type Watermark struct {
	ObservedOn string     // calendar date of the newest stored sighting
	ObservedAt *time.Time // precise timestamp when the newest sighting has one
}

// LatestSighting returns the incremental-sync watermark for a location,
// or nil when the location has no sightings yet.
func (s *Store) LatestSighting(ctx context.Context, locationID uuid.UUID) (*Watermark, error) {
	var sighting Sighting
	err := s.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("observed_on DESC, observed_at DESC NULLS LAST").
		Limit(1).
		Find(&sighting).Error
	if err != nil {
		return nil, fmt.Errorf("fetch latest sighting: %w", err)
	}
	if sighting.ID == 0 {
		return nil, nil
	}
	return &Watermark{ObservedOn: sighting.ObservedOn, ObservedAt: sighting.ObservedAt}, nil
}

// ExistingSightingIDs reports which of the given ids are already stored.
func (s *Store) ExistingSightingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	existing := make(map[int64]bool, len(ids))

	for start := 0; start < len(ids); start += idChunkSize {
		end := start + idChunkSize
		if end > len(ids) {
			end = len(ids)
		}

		var found []int64
		err := s.db.WithContext(ctx).
			Model(&Sighting{}).
			Where("id IN ?", ids[start:end]).
			Pluck("id", &found).Error
		if err != nil {
			return nil, fmt.Errorf("check existing sighting ids: %w", err)
		}
		for _, id := range found {
			existing[id] = true
		}
	}
	return existing, nil
}

// InsertSighting stores one sighting as a create-if-absent keyed on the
// provider id. It reports whether a row was actually inserted, so callers
// count only genuinely new records.
func (s *Store) InsertSighting(ctx context.Context, sighting *Sighting) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(sighting)
	if res.Error != nil {
		return false, fmt.Errorf("insert sighting %d: %w", sighting.ID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MissingTaxonIDs returns the subset of ids not present in the taxa table.
func (s *Store) MissingTaxonIDs(ctx context.Context, ids []int64) ([]int64, error) {
	unique := make(map[int64]bool, len(ids))
	ordered := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != 0 && !unique[id] {
			unique[id] = true
			ordered = append(ordered, id)
		}
	}

	var missing []int64
	for start := 0; start < len(ordered); start += idChunkSize {
		end := start + idChunkSize
		if end > len(ordered) {
			end = len(ordered)
		}
		chunk := ordered[start:end]

		var found []int64
		err := s.db.WithContext(ctx).
			Model(&Taxon{}).
			Where("id IN ?", chunk).
			Pluck("id", &found).Error
		if err != nil {
			return nil, fmt.Errorf("check existing taxon ids: %w", err)
		}

		inDB := make(map[int64]bool, len(found))
		for _, id := range found {
			inDB[id] = true
		}
		for _, id := range chunk {
			if !inDB[id] {
				missing = append(missing, id)
			}
		}
	}
	return missing, nil
}

// InsertTaxon stores a taxon, ignoring duplicates.
func (s *Store) InsertTaxon(ctx context.Context, taxon *Taxon) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(taxon).Error
	if err != nil {
		return fmt.Errorf("insert taxon %d: %w", taxon.ID, err)
	}
	return nil
}

// ApplyDeltas adds the batch increments to the cached counters using
// server-side arithmetic, so concurrent job invocations cannot lose
// updates the way a read-modify-write would.
func (s *Store) ApplyDeltas(ctx context.Context, locationID uuid.UUID, d Deltas) error {
	if d.Location > 0 {
		err := s.db.WithContext(ctx).
			Model(&Location{}).
			Where("id = ?", locationID).
			UpdateColumn("sighting_count", gorm.Expr("sighting_count + ?", d.Location)).Error
		if err != nil {
			return fmt.Errorf("increment location %s: %w", locationID, err)
		}
	}

	for trailID, n := range d.Trails {
		if n <= 0 {
			continue
		}
		err := s.db.WithContext(ctx).
			Model(&Trail{}).
			Where("id = ? AND location_id = ?", trailID, locationID).
			UpdateColumn("sighting_count", gorm.Expr("sighting_count + ?", n)).Error
		if err != nil {
			return fmt.Errorf("increment trail %d: %w", trailID, err)
		}
	}
	return nil
}

// RecountLocation recomputes a location's cached counters from
// authoritative row counts and overwrites them, converging any drift.
// Returns the recomputed totals.
func (s *Store) RecountLocation(ctx context.Context, locationID uuid.UUID) (sightings, trails int64, err error) {
	tx := s.db.WithContext(ctx)

	if err = tx.Model(&Trail{}).Where("location_id = ?", locationID).Count(&trails).Error; err != nil {
		return 0, 0, fmt.Errorf("count trails: %w", err)
	}

	var trailIDs []int64
	if err = tx.Model(&Trail{}).Where("location_id = ?", locationID).Order("id").Pluck("id", &trailIDs).Error; err != nil {
		return 0, 0, fmt.Errorf("fetch trail ids: %w", err)
	}

	for _, trailID := range trailIDs {
		var n int64
		if err = tx.Model(&Sighting{}).
			Where("location_id = ? AND trail_id = ?", locationID, trailID).
			Count(&n).Error; err != nil {
			return 0, 0, fmt.Errorf("count sightings for trail %d: %w", trailID, err)
		}
		if err = tx.Model(&Trail{}).
			Where("id = ? AND location_id = ?", trailID, locationID).
			UpdateColumn("sighting_count", n).Error; err != nil {
			return 0, 0, fmt.Errorf("update trail %d: %w", trailID, err)
		}
	}

	// Location total includes sightings not assigned to any trail.
	if err = tx.Model(&Sighting{}).Where("location_id = ?", locationID).Count(&sightings).Error; err != nil {
		return 0, 0, fmt.Errorf("count sightings: %w", err)
	}

	err = tx.Model(&Location{}).
		Where("id = ?", locationID).
		UpdateColumns(map[string]interface{}{
			"sighting_count": sightings,
			"trail_count":    trails,
		}).Error
	if err != nil {
		return 0, 0, fmt.Errorf("update location %s: %w", locationID, err)
	}

	return sightings, trails, nil
}
