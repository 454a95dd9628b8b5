package geo_test

import (
	"math"
	"testing"

	"github.com/TrailSight/TS-Backend/internal/geo"
)

// vertical test trail along lng=0 from lat -1 to 1
var verticalTrail = []geo.Coordinate{
	{Lat: -1, Lng: 0},
	{Lat: 1, Lng: 0},
}

// TestNearestTrail_OutsideThreshold verifies that a point farther than the
// threshold from every candidate is left unassigned.
func TestNearestTrail_OutsideThreshold(t *testing.T) {
	candidates := []geo.TrailCandidate{
		{ID: 1, Line: verticalTrail},
	}

	// ~1.1 km east of the trail, threshold 50 m
	p := geo.Coordinate{Lat: 0, Lng: 0.01}

	if id, ok := geo.NearestTrail(p, candidates, geo.DefaultMatchDistanceM, geo.FlatEarth); ok {
		t.Errorf("expected no match, got trail %d", id)
	}
}

// TestNearestTrail_ExactThreshold verifies that the threshold comparison is
// inclusive: a point at exactly the maximum distance is still assigned.
func TestNearestTrail_ExactThreshold(t *testing.T) {
	candidates := []geo.TrailCandidate{
		{ID: 7, Line: verticalTrail},
	}

	p := geo.Coordinate{Lat: 0, Lng: 50.0 / geo.MetersPerDegree}
	// Same computation the matcher performs, so equality is exact.
	threshold := geo.FlatEarth(p, geo.Coordinate{Lat: 0, Lng: 0})

	id, ok := geo.NearestTrail(p, candidates, threshold, geo.FlatEarth)
	if !ok {
		t.Fatal("expected a match at exactly the threshold distance")
	}
	if id != 7 {
		t.Errorf("expected trail 7, got %d", id)
	}
}

// TestNearestTrail_EquidistantTie verifies that two candidates at identical
// distances resolve deterministically to the first in scan order, and that
// the result is stable across repeated calls.
func TestNearestTrail_EquidistantTie(t *testing.T) {
	d := 20.0 / geo.MetersPerDegree // 20 m either side
	candidates := []geo.TrailCandidate{
		{ID: 3, Line: []geo.Coordinate{{Lat: -1, Lng: -d}, {Lat: 1, Lng: -d}}},
		{ID: 9, Line: []geo.Coordinate{{Lat: -1, Lng: d}, {Lat: 1, Lng: d}}},
	}
	p := geo.Coordinate{Lat: 0, Lng: 0}

	for i := 0; i < 100; i++ {
		id, ok := geo.NearestTrail(p, candidates, geo.DefaultMatchDistanceM, geo.FlatEarth)
		if !ok {
			t.Fatal("expected a match")
		}
		if id != 3 {
			t.Fatalf("iteration %d: expected first candidate (3) to win the tie, got %d", i, id)
		}
	}
}

// TestNearestTrail_PicksClosest verifies plain closest-wins behavior when
// several candidates are within the threshold.
func TestNearestTrail_PicksClosest(t *testing.T) {
	near := 10.0 / geo.MetersPerDegree
	far := 40.0 / geo.MetersPerDegree
	candidates := []geo.TrailCandidate{
		{ID: 1, Line: []geo.Coordinate{{Lat: -1, Lng: far}, {Lat: 1, Lng: far}}},
		{ID: 2, Line: []geo.Coordinate{{Lat: -1, Lng: near}, {Lat: 1, Lng: near}}},
	}
	p := geo.Coordinate{Lat: 0, Lng: 0}

	id, ok := geo.NearestTrail(p, candidates, geo.DefaultMatchDistanceM, geo.FlatEarth)
	if !ok {
		t.Fatal("expected a match")
	}
	if id != 2 {
		t.Errorf("expected trail 2 (closest), got %d", id)
	}
}

func TestNearestTrail_EmptyCandidates(t *testing.T) {
	p := geo.Coordinate{Lat: 0, Lng: 0}
	if id, ok := geo.NearestTrail(p, nil, geo.DefaultMatchDistanceM, geo.FlatEarth); ok {
		t.Errorf("expected no match for empty candidates, got trail %d", id)
	}
}

// TestDistanceToPolyline_SegmentInterior verifies that the distance is
// measured to the nearest point on the segment, not the nearest vertex.
func TestDistanceToPolyline_SegmentInterior(t *testing.T) {
	line := []geo.Coordinate{
		{Lat: 37.5, Lng: -119.5},
		{Lat: 37.5, Lng: -119.4},
	}
	// Directly north of the segment midpoint, 0.001 deg away.
	p := geo.Coordinate{Lat: 37.501, Lng: -119.45}

	got := geo.DistanceToPolyline(p, line, geo.FlatEarth)
	want := 0.001 * geo.MetersPerDegree
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("expected distance %.6f m, got %.6f m", want, got)
	}
}

func TestDistanceToPolyline_Empty(t *testing.T) {
	p := geo.Coordinate{Lat: 0, Lng: 0}
	if d := geo.DistanceToPolyline(p, nil, geo.FlatEarth); !math.IsInf(d, 1) {
		t.Errorf("expected +Inf for empty polyline, got %f", d)
	}
}

// TestHaversine_KnownDistance sanity-checks the geodesic alternative
// against a known value: one degree of latitude is ~111.2 km.
func TestHaversine_KnownDistance(t *testing.T) {
	a := geo.Coordinate{Lat: 37.0, Lng: -119.0}
	b := geo.Coordinate{Lat: 38.0, Lng: -119.0}

	got := geo.Haversine(a, b)
	if got < 110000 || got > 112500 {
		t.Errorf("expected ~111 km for one degree of latitude, got %.0f m", got)
	}
}
