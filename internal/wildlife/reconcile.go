package wildlife

import (
	"github.com/TrailSight/TS-Backend/internal/geo"
	"github.com/google/uuid"
)

// WatermarkMode controls how the incremental fetch watermark is compared
// against fetched records.
type WatermarkMode string

const (
	// WatermarkStrict drops every record at or before the stored
	// watermark timestamp. This closes the same-day re-fetch overlap that
	// a date-only lower bound creates, and is the default.
	WatermarkStrict WatermarkMode = "strict"

	// WatermarkDayInclusive keeps everything the date-bounded fetch
	// returned, matching the historical scripts. Records from the
	// watermark's own calendar day are re-processed; only the
	// create-if-absent insert keeps them from double-counting.
	WatermarkDayInclusive WatermarkMode = "day-inclusive"
)

// Deltas holds the counter increments produced by one reconciled batch.
type Deltas struct {
	Location int
	Trails   map[int64]int
}

// Reconciler assigns fetched sightings to a location and its trails, and
// computes the counter increments for a batch. It is pure: all inputs are
// passed in, nothing is read from storage.
type Reconciler struct {
	// MatchDistanceM is the trail matching threshold in meters.
	MatchDistanceM float64

	// Distance measures point-to-point distance; FlatEarth when nil.
	Distance geo.DistanceFunc

	Mode WatermarkMode
}

func NewReconciler(matchDistanceM float64, mode WatermarkMode) Reconciler {
	if matchDistanceM <= 0 {
		matchDistanceM = geo.DefaultMatchDistanceM
	}
	if mode == "" {
		mode = WatermarkStrict
	}
	return Reconciler{
		MatchDistanceM: matchDistanceM,
		Distance:       geo.FlatEarth,
		Mode:           mode,
	}
}

// FilterSince drops records already covered by the watermark. In strict
// mode a record survives only if its precise timestamp is strictly after
// the watermark's; records without a precise timestamp survive on a
// strictly later calendar date. Day-inclusive mode keeps the batch as
// fetched.
func (r Reconciler) FilterSince(batch []Sighting, w *Watermark) []Sighting {
	if w == nil || r.Mode == WatermarkDayInclusive {
		return batch
	}

	out := make([]Sighting, 0, len(batch))
	for _, s := range batch {
		if s.ObservedAt != nil && w.ObservedAt != nil {
			if s.ObservedAt.After(*w.ObservedAt) {
				out = append(out, s)
			}
			continue
		}
		// No precise timestamp on one side: fall back to the calendar
		// date and require it to be strictly later.
		if s.ObservedOn > w.ObservedOn {
			out = append(out, s)
		}
	}
	return out
}

// Assign geofences one sighting against the location ring and, when it is
// inside, matches it to the nearest trail within the threshold. It
// reports whether the sighting belongs to the location at all; callers
// discard records for which it returns false.
func (r Reconciler) Assign(s *Sighting, locationID uuid.UUID, ring []geo.Coordinate, candidates []geo.TrailCandidate) bool {
	p := geo.Coordinate{Lat: s.Latitude, Lng: s.Longitude}

	if !geo.Contains(ring, p) {
		return false
	}

	locID := locationID
	s.LocationID = &locID

	if trailID, ok := geo.NearestTrail(p, candidates, r.MatchDistanceM, r.Distance); ok {
		s.TrailID = &trailID
	}
	return true
}

// CountDeltas aggregates the increments for a batch of stored sightings.
// Pass only rows that were actually inserted; counting the raw fetch
// would re-count records on overlap.
func CountDeltas(inserted []Sighting) Deltas {
	d := Deltas{Trails: make(map[int64]int)}
	for _, s := range inserted {
		if s.LocationID == nil {
			continue
		}
		d.Location++
		if s.TrailID != nil {
			d.Trails[*s.TrailID]++
		}
	}
	return d
}
