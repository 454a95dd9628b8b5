package inat

// API response types for the iNaturalist v1 endpoints we consume.

type searchResponse struct {
	TotalResults int           `json:"total_results"`
	Page         int           `json:"page"`
	PerPage      int           `json:"per_page"`
	Results      []Observation `json:"results"`
}

// Observation is one raw record from GET /v1/observations.
type Observation struct {
	ID                int64              `json:"id"`
	URI               string             `json:"uri"`
	ObservedOn        string             `json:"observed_on"`
	TimeObservedAt    string             `json:"time_observed_at"`
	ObservedOnDetails *ObservedOnDetails `json:"observed_on_details"`
	PlaceGuess        string             `json:"place_guess"`
	Description       string             `json:"description"`
	GeoJSON           *GeoJSON           `json:"geojson"`
	Taxon             *Taxon             `json:"taxon"`
	Photos            []Photo            `json:"photos"`
	User              *User              `json:"user"`
}

// ObservedOnDetails carries the broken-out date fields used to synthesize
// a timestamp when time_observed_at is absent. Hour is a pointer because
// 0 (midnight) is a valid value.
type ObservedOnDetails struct {
	Date string `json:"date"`
	Hour *int   `json:"hour"`
}

// GeoJSON holds the observation point as [lng, lat].
type GeoJSON struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Lat returns the latitude, or 0 when coordinates are missing.
func (g *GeoJSON) Lat() float64 {
	if g == nil || len(g.Coordinates) < 2 {
		return 0
	}
	return g.Coordinates[1]
}

// Lng returns the longitude, or 0 when coordinates are missing.
func (g *GeoJSON) Lng() float64 {
	if g == nil || len(g.Coordinates) < 2 {
		return 0
	}
	return g.Coordinates[0]
}

// Valid reports whether the observation carries a usable coordinate pair.
func (g *GeoJSON) Valid() bool {
	return g != nil && len(g.Coordinates) >= 2
}

type Taxon struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	PreferredCommonName string  `json:"preferred_common_name"`
	Rank                string  `json:"rank"`
	IconicTaxonName     string  `json:"iconic_taxon_name"`
	AncestorIDs         []int64 `json:"ancestor_ids"`
	DefaultPhoto        *Photo  `json:"default_photo"`
}

type Photo struct {
	URL       string `json:"url"`
	MediumURL string `json:"medium_url"`
	SquareURL string `json:"square_url"`
}

type User struct {
	Login   string `json:"login"`
	IconURL string `json:"icon_url"`
}

type taxaResponse struct {
	Results []Taxon `json:"results"`
}
