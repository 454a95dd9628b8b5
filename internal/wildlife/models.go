package wildlife

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Location is a named area (a park) with a polygon boundary. The count
// fields are cached aggregates converged by the reconciliation jobs, not
// live queries.
type Location struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string    `json:"name"`
	Geometry      string    `json:"geometry"` // WKT POLYGON
	SightingCount int       `json:"sighting_count"`
	TrailCount    int       `json:"trail_count"`
}

// Trail is an OSM-sourced path inside a location, stored as a WKT
// LINESTRING polyline.
type Trail struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	LocationID      uuid.UUID `json:"location_id" gorm:"type:uuid;index"`
	Name            string    `json:"name"`
	Surface         string    `json:"surface"`
	TrailVisibility string    `json:"trail_visibility"`
	Geometry        string    `json:"geometry"` // WKT LINESTRING
	SightingCount   int       `json:"sighting_count"`
}

// Sighting is one observation record. The id comes from the upstream
// observation provider and is globally unique, which is what makes
// inserts safely re-runnable.
//
// TrailID is null when the sighting is inside a location but farther than
// the match threshold from every trail. LocationID is null when the point
// is outside all known location polygons.
type Sighting struct {
	ID         int64          `json:"id" gorm:"primaryKey"`
	ObservedOn string         `json:"observed_on"` // calendar date, YYYY-MM-DD
	ObservedAt *time.Time     `json:"observed_at"` // precise timestamp when known
	PlaceGuess string         `json:"place_guess"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	TaxonID    int64          `json:"taxon_id" gorm:"index"`
	TrailID    *int64         `json:"trail_id" gorm:"index"`
	LocationID *uuid.UUID     `json:"location_id" gorm:"type:uuid;index"`
	ImageURLs  pq.StringArray `json:"image_urls" gorm:"type:text[]"`
}

// Taxon is the biological classification entry referenced by sightings.
type Taxon struct {
	ID                  int64          `json:"id" gorm:"primaryKey"`
	Name                string         `json:"name"` // scientific name
	PreferredCommonName string         `json:"preferred_common_name"`
	Rank                string         `json:"rank"`
	IconicTaxonName     string         `json:"iconic_taxon_name"`
	AncestorIDs         pq.StringArray `json:"ancestor_ids" gorm:"type:text[]"`
	PhotoURL            string         `json:"photo_url"`
}

func (Location) TableName() string {
	return "wildlife.locations"
}

func (Trail) TableName() string {
	return "wildlife.trails"
}

func (Sighting) TableName() string {
	return "wildlife.sightings"
}

func (Taxon) TableName() string {
	return "wildlife.taxa"
}
