package inat

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Record is a normalized observation ready for storage: taxon verified
// present, coordinates unpacked, timestamp synthesized when possible.
type Record struct {
	ID         int64
	ObservedOn string
	ObservedAt *time.Time
	PlaceGuess string
	Latitude   float64
	Longitude  float64
	Taxon      Taxon
	ImageURLs  []string
}

// NormalizeObservation converts a raw API observation into a Record.
// Observations without a nested taxon or without coordinates are
// unusable and reported as not ok.
func NormalizeObservation(obs Observation) (Record, bool) {
	if obs.Taxon == nil || obs.Taxon.ID == 0 {
		return Record{}, false
	}
	if !obs.GeoJSON.Valid() {
		return Record{}, false
	}

	return Record{
		ID:         obs.ID,
		ObservedOn: obs.ObservedOn,
		ObservedAt: observedAt(obs),
		PlaceGuess: obs.PlaceGuess,
		Latitude:   obs.GeoJSON.Lat(),
		Longitude:  obs.GeoJSON.Lng(),
		Taxon:      *obs.Taxon,
		ImageURLs:  photoURLs(obs.Photos),
	}, true
}

// observedAt prefers the precise time_observed_at and falls back to
// synthesizing a timestamp from the date + hour breakdown. Nil when
// neither is available.
func observedAt(obs Observation) *time.Time {
	if obs.TimeObservedAt != "" {
		if t, err := time.Parse(time.RFC3339, obs.TimeObservedAt); err == nil {
			return &t
		}
	}

	d := obs.ObservedOnDetails
	if d == nil || d.Date == "" || d.Hour == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", fmt.Sprintf("%sT%02d:00:00", d.Date, *d.Hour))
	if err != nil {
		return nil
	}
	return &t
}

func photoURLs(photos []Photo) []string {
	var urls []string
	for _, p := range photos {
		if p.URL != "" {
			urls = append(urls, p.URL)
		}
	}
	return urls
}

var commonNameCaser = cases.Title(language.AmericanEnglish, cases.NoLower)

// TitleCommonName upper-cases a common name for display ("mule deer" ->
// "Mule Deer"). Names the API already capitalizes are left intact.
func TitleCommonName(name string) string {
	if name == "" {
		return ""
	}
	return commonNameCaser.String(name)
}

// AncestorIDStrings renders a taxon's ancestor chain as strings for the
// text[] column.
func AncestorIDStrings(t Taxon) []string {
	out := make([]string, 0, len(t.AncestorIDs))
	for _, id := range t.AncestorIDs {
		out = append(out, fmt.Sprint(id))
	}
	return out
}

// PhotoURL picks the best available photo for a taxon.
func PhotoURL(t Taxon) string {
	if t.DefaultPhoto == nil {
		return ""
	}
	if t.DefaultPhoto.MediumURL != "" {
		return t.DefaultPhoto.MediumURL
	}
	return t.DefaultPhoto.URL
}

// animalGroups are the broad taxonomic groups treated as animal
// sightings by the export tooling.
var animalGroups = map[string]bool{
	"Animalia":       true,
	"Mammalia":       true,
	"Aves":           true,
	"Reptilia":       true,
	"Amphibia":       true,
	"Actinopterygii": true,
	"Insecta":        true,
	"Arachnida":      true,
	"Mollusca":       true,
}

// IsAnimal reports whether a taxon's iconic group is one of the animal
// groups.
func IsAnimal(t Taxon) bool {
	return animalGroups[strings.TrimSpace(t.IconicTaxonName)]
}
