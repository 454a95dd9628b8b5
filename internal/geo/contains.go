package geo

// Contains reports whether p lies strictly inside the polygon ring.
// Points exactly on the boundary are exterior: a sighting on a park
// boundary line is not counted as inside the park.
//
// The ring is an ordered sequence of vertices; it may be closed
// (first == last) or open, both are handled.
func Contains(ring []Coordinate, p Coordinate) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	// Drop the duplicate closing vertex if present.
	if ring[0] == ring[n-1] {
		ring = ring[:n-1]
		n--
		if n < 3 {
			return false
		}
	}

	for i := 0; i < n; i++ {
		if onSegment(p, ring[i], ring[(i+1)%n]) {
			return false
		}
	}

	// Ray casting: count crossings of a horizontal ray extending east.
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			x := (b.Lng-a.Lng)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lng
			if p.Lng < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// onSegment reports whether p lies exactly on the segment a-b.
func onSegment(p, a, b Coordinate) bool {
	cross := (b.Lng-a.Lng)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lng-a.Lng)
	if cross != 0 {
		return false
	}
	if p.Lng < min(a.Lng, b.Lng) || p.Lng > max(a.Lng, b.Lng) {
		return false
	}
	if p.Lat < min(a.Lat, b.Lat) || p.Lat > max(a.Lat, b.Lat) {
		return false
	}
	return true
}
