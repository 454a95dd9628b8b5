package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// Geometries are stored as WKT text ("POLYGON ((lng lat, ...))",
// "LINESTRING (lng lat, ...)") and parsed back into coordinate sequences
// before any spatial computation. WKT axis order is lng lat (x y).

// ParseLineString parses a WKT LINESTRING into an open polyline.
func ParseLineString(wkt string) ([]Coordinate, error) {
	body, err := wktBody(wkt, "LINESTRING")
	if err != nil {
		return nil, err
	}
	coords, err := parseCoordList(body)
	if err != nil {
		return nil, fmt.Errorf("parse linestring: %w", err)
	}
	if len(coords) < 2 {
		return nil, fmt.Errorf("linestring needs at least 2 points, got %d", len(coords))
	}
	return coords, nil
}

// ParsePolygon parses a WKT POLYGON and returns its outer ring. Interior
// rings (holes) are ignored; none of the stored boundaries have them.
func ParsePolygon(wkt string) ([]Coordinate, error) {
	body, err := wktBody(wkt, "POLYGON")
	if err != nil {
		return nil, err
	}

	// Outer ring is the first parenthesized group.
	if !strings.HasPrefix(body, "(") {
		return nil, fmt.Errorf("polygon missing ring: %q", wkt)
	}
	end := strings.Index(body, ")")
	if end < 0 {
		return nil, fmt.Errorf("polygon ring not closed: %q", wkt)
	}

	coords, err := parseCoordList(body[1:end])
	if err != nil {
		return nil, fmt.Errorf("parse polygon: %w", err)
	}
	if len(coords) < 4 {
		return nil, fmt.Errorf("polygon ring needs at least 4 points, got %d", len(coords))
	}
	if coords[0] != coords[len(coords)-1] {
		return nil, fmt.Errorf("polygon ring is not closed (first != last)")
	}
	return coords, nil
}

// wktBody strips the geometry keyword and the outermost parentheses.
func wktBody(wkt, keyword string) (string, error) {
	s := strings.TrimSpace(wkt)
	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, keyword) {
		return "", fmt.Errorf("expected %s geometry, got %q", keyword, truncate(s, 30))
	}
	s = strings.TrimSpace(s[len(keyword):])
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return "", fmt.Errorf("malformed %s: %q", keyword, truncate(wkt, 30))
	}
	return strings.TrimSpace(s[1 : len(s)-1]), nil
}

// parseCoordList parses "lng lat, lng lat, ..." pairs.
func parseCoordList(s string) ([]Coordinate, error) {
	parts := strings.Split(s, ",")
	coords := make([]Coordinate, 0, len(parts))

	for _, part := range parts {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) < 2 {
			return nil, fmt.Errorf("coordinate pair %q", part)
		}
		lng, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("longitude %q: %w", fields[0], err)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("latitude %q: %w", fields[1], err)
		}
		coords = append(coords, Coordinate{Lat: lat, Lng: lng})
	}
	return coords, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
