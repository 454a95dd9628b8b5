package geo

import "math"

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MetersPerDegree is the flat-earth conversion factor used for trail
// matching. It is only valid at small scale and mid latitudes; distances
// are approximate, not geodesic.
const MetersPerDegree = 111139.0

// DefaultMatchDistanceM is the maximum distance between a sighting and a
// trail polyline for the sighting to be assigned to that trail.
const DefaultMatchDistanceM = 50.0

// DistanceFunc returns the distance in meters between two coordinates.
type DistanceFunc func(a, b Coordinate) float64

// FlatEarth measures Euclidean distance in degree space scaled by
// MetersPerDegree.
func FlatEarth(a, b Coordinate) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return math.Sqrt(dLat*dLat+dLng*dLng) * MetersPerDegree
}

const earthRadiusMeters = 6371000

// Haversine is a drop-in alternative to FlatEarth for callers that need
// accuracy at larger scales or high latitudes.
func Haversine(a, b Coordinate) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	deltaPhi := (b.Lat - a.Lat) * math.Pi / 180
	deltaLambda := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// closestPointOnSegment projects p onto the segment a-b in degree space
// and clamps to the endpoints.
func closestPointOnSegment(p, a, b Coordinate) Coordinate {
	dLng := b.Lng - a.Lng
	dLat := b.Lat - a.Lat
	if dLng == 0 && dLat == 0 {
		return a
	}

	t := ((p.Lng-a.Lng)*dLng + (p.Lat-a.Lat)*dLat) / (dLng*dLng + dLat*dLat)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return Coordinate{Lat: a.Lat + t*dLat, Lng: a.Lng + t*dLng}
}

// DistanceToPolyline returns the minimum distance in meters from p to the
// polyline, minimized over all segments. An empty polyline is infinitely
// far away.
func DistanceToPolyline(p Coordinate, line []Coordinate, dist DistanceFunc) float64 {
	switch len(line) {
	case 0:
		return math.Inf(1)
	case 1:
		return dist(p, line[0])
	}

	min := math.Inf(1)
	for i := 1; i < len(line); i++ {
		d := dist(p, closestPointOnSegment(p, line[i-1], line[i]))
		if d < min {
			min = d
		}
	}
	return min
}

// TrailCandidate pairs a trail id with its polyline geometry.
type TrailCandidate struct {
	ID   int64
	Line []Coordinate
}

// NearestTrail returns the id of the candidate whose polyline is closest
// to p, provided that distance is within maxDistanceM (inclusive).
//
// Candidates are scanned in slice order with a strictly-less-than
// comparison, so on an exact tie the earliest candidate wins. Callers
// sort candidates ascending by trail id to make ties reproducible.
//
// Every candidate is scanned on every call; there is no spatial index.
// Datasets are hundreds of trails, so the simplicity is worth more than
// the lookup cost.
func NearestTrail(p Coordinate, candidates []TrailCandidate, maxDistanceM float64, dist DistanceFunc) (int64, bool) {
	if dist == nil {
		dist = FlatEarth
	}

	best := math.Inf(1)
	var bestID int64
	found := false

	for _, c := range candidates {
		d := DistanceToPolyline(p, c.Line, dist)
		if d < best {
			best = d
			bestID = c.ID
			found = true
		}
	}

	if !found || best > maxDistanceM {
		return 0, false
	}
	return bestID, true
}
