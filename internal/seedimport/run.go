package seedimport

import (
	"fmt"
	"log"

	"github.com/TrailSight/TS-Backend/internal/geo"
	"github.com/TrailSight/TS-Backend/internal/wildlife"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Result summarizes one import run.
type Result struct {
	Imported int
	Skipped  int
}

// ImportLocations upserts location seed rows in one transaction. Rows
// whose geometry fails to parse as a closed POLYGON are skipped with a
// warning; counters start at zero and are left to the backfill job.
func ImportLocations(db *gorm.DB, rows []LocationRow) (Result, error) {
	var res Result

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if _, err := geo.ParsePolygon(row.Geometry); err != nil {
				log.Printf("[seedimport] skipping location %q: %v", row.Name, err)
				res.Skipped++
				continue
			}

			loc := wildlife.Location{
				ID:       row.ID,
				Name:     row.Name,
				Geometry: row.Geometry,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "geometry"}),
			}).Create(&loc).Error; err != nil {
				return fmt.Errorf("insert location %q: %w", row.Name, err)
			}
			res.Imported++
		}
		return nil
	})
	return res, err
}

// ImportTrails upserts trail seed rows in one transaction, skipping rows
// with unparseable polylines.
func ImportTrails(db *gorm.DB, rows []TrailRow) (Result, error) {
	var res Result

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if _, err := geo.ParseLineString(row.Geometry); err != nil {
				log.Printf("[seedimport] skipping trail %d %q: %v", row.ID, row.Name, err)
				res.Skipped++
				continue
			}

			trail := wildlife.Trail{
				ID:              row.ID,
				LocationID:      row.LocationID,
				Name:            row.Name,
				Surface:         row.Surface,
				TrailVisibility: row.TrailVisibility,
				Geometry:        row.Geometry,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"location_id", "name", "surface", "trail_visibility", "geometry",
				}),
			}).Create(&trail).Error; err != nil {
				return fmt.Errorf("insert trail %d: %w", row.ID, err)
			}
			res.Imported++
		}
		return nil
	})
	return res, err
}
