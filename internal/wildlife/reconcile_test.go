package wildlife_test

import (
	"testing"
	"time"

	"github.com/TrailSight/TS-Backend/internal/geo"
	"github.com/TrailSight/TS-Backend/internal/wildlife"
	"github.com/google/uuid"
)

var testLocationID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// park covering lat 37..38, lng -120..-119
var parkRing = []geo.Coordinate{
	{Lat: 37.0, Lng: -120.0},
	{Lat: 38.0, Lng: -120.0},
	{Lat: 38.0, Lng: -119.0},
	{Lat: 37.0, Lng: -119.0},
	{Lat: 37.0, Lng: -120.0},
}

// one east-west trail across the middle of the park
var parkTrails = []geo.TrailCandidate{
	{ID: 1, Line: []geo.Coordinate{
		{Lat: 37.5, Lng: -119.5},
		{Lat: 37.5, Lng: -119.4},
	}},
}

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// TestAssign_EndToEndScenario walks the canonical three-observation batch:
// one on the trail, one inside the park but off the trail, one outside the
// park entirely.
func TestAssign_EndToEndScenario(t *testing.T) {
	rec := wildlife.NewReconciler(0, "")

	batch := []wildlife.Sighting{
		{ID: 101, Latitude: 37.5, Longitude: -119.45}, // on trail
		{ID: 102, Latitude: 37.5, Longitude: -119.3},  // in park, off trail
		{ID: 103, Latitude: 39.0, Longitude: -119.5},  // outside park
	}

	var kept []wildlife.Sighting
	for i := range batch {
		if rec.Assign(&batch[i], testLocationID, parkRing, parkTrails) {
			kept = append(kept, batch[i])
		}
	}

	if len(kept) != 2 {
		t.Fatalf("expected 2 sightings kept, got %d", len(kept))
	}
	if kept[0].ID != 101 || kept[1].ID != 102 {
		t.Fatalf("expected sightings 101 and 102 kept, got %d and %d", kept[0].ID, kept[1].ID)
	}

	if kept[0].TrailID == nil || *kept[0].TrailID != 1 {
		t.Error("expected sighting 101 to be assigned to trail 1")
	}
	if kept[1].TrailID != nil {
		t.Errorf("expected sighting 102 to have no trail, got %d", *kept[1].TrailID)
	}
	for _, s := range kept {
		if s.LocationID == nil || *s.LocationID != testLocationID {
			t.Errorf("expected sighting %d to carry the location id", s.ID)
		}
	}

	d := wildlife.CountDeltas(kept)
	if d.Location != 2 {
		t.Errorf("expected location delta 2, got %d", d.Location)
	}
	if d.Trails[1] != 1 {
		t.Errorf("expected trail 1 delta 1, got %d", d.Trails[1])
	}
}

// TestRerun_NoDoubleCount verifies the re-run property: processing the
// same upstream batch a second time, with the first run's inserts now in
// the store, produces zero increments.
func TestRerun_NoDoubleCount(t *testing.T) {
	rec := wildlife.NewReconciler(0, wildlife.WatermarkDayInclusive)

	fetch := func() []wildlife.Sighting {
		return []wildlife.Sighting{
			{ID: 201, ObservedOn: "2026-05-01", Latitude: 37.5, Longitude: -119.45},
			{ID: 202, ObservedOn: "2026-05-01", Latitude: 37.5, Longitude: -119.3},
		}
	}

	stored := map[int64]bool{}

	run := func() wildlife.Deltas {
		batch := fetch()
		var inserted []wildlife.Sighting
		for i := range batch {
			if !rec.Assign(&batch[i], testLocationID, parkRing, parkTrails) {
				continue
			}
			// create-if-absent keyed on the provider id
			if stored[batch[i].ID] {
				continue
			}
			stored[batch[i].ID] = true
			inserted = append(inserted, batch[i])
		}
		return wildlife.CountDeltas(inserted)
	}

	first := run()
	if first.Location != 2 || first.Trails[1] != 1 {
		t.Fatalf("first run: expected location=2 trail[1]=1, got %+v", first)
	}

	second := run()
	if second.Location != 0 {
		t.Errorf("second run: expected location delta 0, got %d", second.Location)
	}
	if len(second.Trails) != 0 {
		t.Errorf("second run: expected no trail deltas, got %v", second.Trails)
	}
}

// TestFilterSince_Strict verifies that strict mode drops records at or
// before the watermark timestamp, including same-day re-fetches the
// date-only d1 bound returns.
func TestFilterSince_Strict(t *testing.T) {
	rec := wildlife.NewReconciler(0, wildlife.WatermarkStrict)
	w := &wildlife.Watermark{
		ObservedOn: "2026-05-01",
		ObservedAt: ts("2026-05-01T12:00:00Z"),
	}

	batch := []wildlife.Sighting{
		{ID: 1, ObservedOn: "2026-05-01", ObservedAt: ts("2026-05-01T09:00:00Z")}, // same day, earlier
		{ID: 2, ObservedOn: "2026-05-01", ObservedAt: ts("2026-05-01T12:00:00Z")}, // exactly the watermark
		{ID: 3, ObservedOn: "2026-05-01", ObservedAt: ts("2026-05-01T15:00:00Z")}, // same day, later
		{ID: 4, ObservedOn: "2026-05-02", ObservedAt: ts("2026-05-02T08:00:00Z")}, // next day
		{ID: 5, ObservedOn: "2026-05-01"},                                         // same day, no timestamp
		{ID: 6, ObservedOn: "2026-05-02"},                                         // next day, no timestamp
	}

	got := rec.FilterSince(batch, w)

	want := map[int64]bool{3: true, 4: true, 6: true}
	if len(got) != len(want) {
		t.Fatalf("expected %d records to survive, got %d", len(want), len(got))
	}
	for _, s := range got {
		if !want[s.ID] {
			t.Errorf("unexpected survivor %d", s.ID)
		}
	}
}

// TestFilterSince_DayInclusive verifies the compatibility mode keeps the
// batch exactly as fetched.
func TestFilterSince_DayInclusive(t *testing.T) {
	rec := wildlife.NewReconciler(0, wildlife.WatermarkDayInclusive)
	w := &wildlife.Watermark{
		ObservedOn: "2026-05-01",
		ObservedAt: ts("2026-05-01T12:00:00Z"),
	}

	batch := []wildlife.Sighting{
		{ID: 1, ObservedOn: "2026-05-01", ObservedAt: ts("2026-05-01T09:00:00Z")},
		{ID: 2, ObservedOn: "2026-04-30", ObservedAt: ts("2026-04-30T09:00:00Z")},
	}

	if got := rec.FilterSince(batch, w); len(got) != len(batch) {
		t.Errorf("expected all %d records kept, got %d", len(batch), len(got))
	}
}

func TestFilterSince_NoWatermark(t *testing.T) {
	rec := wildlife.NewReconciler(0, wildlife.WatermarkStrict)
	batch := []wildlife.Sighting{{ID: 1, ObservedOn: "2026-05-01"}}

	if got := rec.FilterSince(batch, nil); len(got) != 1 {
		t.Errorf("expected first-run batch untouched, got %d records", len(got))
	}
}

// TestCountDeltas_SkipsUnassigned verifies records without a location are
// never counted, whatever their trail field says.
func TestCountDeltas_SkipsUnassigned(t *testing.T) {
	trailID := int64(4)
	d := wildlife.CountDeltas([]wildlife.Sighting{
		{ID: 1},
		{ID: 2, TrailID: &trailID},
	})
	if d.Location != 0 || len(d.Trails) != 0 {
		t.Errorf("expected empty deltas, got %+v", d)
	}
}
