package seedimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// LocationRow is one parsed row from a locations seed CSV
// (id,name,geometry,...). Geometry is WKT POLYGON text.
type LocationRow struct {
	ID       uuid.UUID
	Name     string
	Geometry string
}

// TrailRow is one parsed row from a trails seed CSV. Geometry is WKT
// LINESTRING text. Extra OSM columns beyond the ones kept here are
// ignored.
type TrailRow struct {
	ID              int64
	Name            string
	Surface         string
	TrailVisibility string
	Geometry        string
	LocationID      uuid.UUID
}

// ParseLocationsCSV reads a locations seed file. Required columns:
// id, name, geometry.
func ParseLocationsCSV(path string) ([]LocationRow, error) {
	records, col, err := readCSV(path, []string{"id", "name", "geometry"})
	if err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]bool{}
	var out []LocationRow

	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		get := fieldGetter(records[rowIdx], col)

		id, err := uuid.Parse(get("id"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid location id: %w", rowIdx+1, err)
		}
		if seen[id] {
			return nil, fmt.Errorf("row %d: duplicate location id %s", rowIdx+1, id)
		}
		seen[id] = true

		name := get("name")
		if name == "" {
			return nil, fmt.Errorf("row %d: name is required", rowIdx+1)
		}

		out = append(out, LocationRow{
			ID:       id,
			Name:     name,
			Geometry: get("geometry"),
		})
	}
	return out, nil
}

// ParseTrailsCSV reads a trails seed file. Required columns:
// id, name, geometry, location_id.
func ParseTrailsCSV(path string) ([]TrailRow, error) {
	records, col, err := readCSV(path, []string{"id", "name", "geometry", "location_id"})
	if err != nil {
		return nil, err
	}

	seen := map[int64]bool{}
	var out []TrailRow

	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		get := fieldGetter(records[rowIdx], col)

		id, err := strconv.ParseInt(get("id"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid trail id: %w", rowIdx+1, err)
		}
		if seen[id] {
			return nil, fmt.Errorf("row %d: duplicate trail id %d", rowIdx+1, id)
		}
		seen[id] = true

		locID, err := uuid.Parse(get("location_id"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid location_id: %w", rowIdx+1, err)
		}

		out = append(out, TrailRow{
			ID:              id,
			Name:            get("name"),
			Surface:         get("surface"),
			TrailVisibility: get("trail_visibility"),
			Geometry:        get("geometry"),
			LocationID:      locID,
		})
	}
	return out, nil
}

func readCSV(path string, required []string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, errors.New("csv has no data rows")
	}

	header := records[0]
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	for _, k := range required {
		if _, ok := col[k]; !ok {
			return nil, nil, fmt.Errorf("missing required column: %s", k)
		}
	}
	return records, col, nil
}

func fieldGetter(rec []string, col map[string]int) func(string) string {
	return func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
}
