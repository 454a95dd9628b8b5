package inat

import (
	"testing"
	"time"
)

func intPtr(n int) *int { return &n }

func validObservation() Observation {
	return Observation{
		ID:         77,
		ObservedOn: "2026-05-01",
		PlaceGuess: "Yosemite Valley",
		GeoJSON:    &GeoJSON{Coordinates: []float64{-119.5, 37.5}},
		Taxon:      &Taxon{ID: 42069, Name: "Odocoileus hemionus"},
	}
}

func TestNormalizeObservation(t *testing.T) {
	obs := validObservation()
	obs.Photos = []Photo{
		{URL: "https://static.example.org/a.jpg"},
		{URL: ""},
		{URL: "https://static.example.org/b.jpg"},
	}

	rec, ok := NormalizeObservation(obs)
	if !ok {
		t.Fatal("expected a valid observation to normalize")
	}
	if rec.Latitude != 37.5 || rec.Longitude != -119.5 {
		t.Errorf("coordinates unpacked wrong: lat=%v lng=%v", rec.Latitude, rec.Longitude)
	}
	if rec.Taxon.ID != 42069 {
		t.Errorf("expected taxon 42069, got %d", rec.Taxon.ID)
	}
	if len(rec.ImageURLs) != 2 {
		t.Errorf("expected 2 image urls with blanks dropped, got %v", rec.ImageURLs)
	}
}

func TestNormalizeObservation_RejectsMissingTaxon(t *testing.T) {
	obs := validObservation()
	obs.Taxon = nil
	if _, ok := NormalizeObservation(obs); ok {
		t.Error("expected observation without taxon to be rejected")
	}

	obs = validObservation()
	obs.Taxon = &Taxon{}
	if _, ok := NormalizeObservation(obs); ok {
		t.Error("expected observation with zero taxon id to be rejected")
	}
}

func TestNormalizeObservation_RejectsMissingCoordinates(t *testing.T) {
	obs := validObservation()
	obs.GeoJSON = nil
	if _, ok := NormalizeObservation(obs); ok {
		t.Error("expected observation without coordinates to be rejected")
	}
}

func TestObservedAt_PrefersPreciseTimestamp(t *testing.T) {
	obs := validObservation()
	obs.TimeObservedAt = "2026-05-01T14:23:05-07:00"
	obs.ObservedOnDetails = &ObservedOnDetails{Date: "2026-05-01", Hour: intPtr(9)}

	rec, ok := NormalizeObservation(obs)
	if !ok {
		t.Fatal("expected normalization to succeed")
	}
	if rec.ObservedAt == nil {
		t.Fatal("expected a timestamp")
	}
	want, _ := time.Parse(time.RFC3339, "2026-05-01T14:23:05-07:00")
	if !rec.ObservedAt.Equal(want) {
		t.Errorf("expected the precise timestamp, got %s", rec.ObservedAt)
	}
}

func TestObservedAt_SynthesizesFromDateAndHour(t *testing.T) {
	obs := validObservation()
	obs.ObservedOnDetails = &ObservedOnDetails{Date: "2026-05-01", Hour: intPtr(14)}

	rec, ok := NormalizeObservation(obs)
	if !ok {
		t.Fatal("expected normalization to succeed")
	}
	if rec.ObservedAt == nil {
		t.Fatal("expected a synthesized timestamp")
	}
	if got := rec.ObservedAt.Format("2006-01-02T15:04:05"); got != "2026-05-01T14:00:00" {
		t.Errorf("expected 2026-05-01T14:00:00, got %s", got)
	}
}

func TestObservedAt_NilWithoutHour(t *testing.T) {
	obs := validObservation()
	obs.ObservedOnDetails = &ObservedOnDetails{Date: "2026-05-01"}

	rec, _ := NormalizeObservation(obs)
	if rec.ObservedAt != nil {
		t.Errorf("expected nil timestamp without an hour, got %s", rec.ObservedAt)
	}
}

func TestTitleCommonName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"mule deer", "Mule Deer"},
		{"Steller's Jay", "Steller's Jay"},
		{"", ""},
	}
	for _, c := range cases {
		if got := TitleCommonName(c.in); got != c.want {
			t.Errorf("TitleCommonName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAncestorIDStrings(t *testing.T) {
	got := AncestorIDStrings(Taxon{AncestorIDs: []int64{48460, 1, 2}})
	want := []string{"48460", "1", "2"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestPhotoURL(t *testing.T) {
	if got := PhotoURL(Taxon{}); got != "" {
		t.Errorf("expected empty url without a default photo, got %q", got)
	}
	if got := PhotoURL(Taxon{DefaultPhoto: &Photo{URL: "small.jpg", MediumURL: "medium.jpg"}}); got != "medium.jpg" {
		t.Errorf("expected medium url preferred, got %q", got)
	}
	if got := PhotoURL(Taxon{DefaultPhoto: &Photo{URL: "small.jpg"}}); got != "small.jpg" {
		t.Errorf("expected fallback to base url, got %q", got)
	}
}

func TestIsAnimal(t *testing.T) {
	if !IsAnimal(Taxon{IconicTaxonName: "Mammalia"}) {
		t.Error("expected Mammalia to be an animal group")
	}
	if IsAnimal(Taxon{IconicTaxonName: "Plantae"}) {
		t.Error("expected Plantae to be excluded")
	}
	if IsAnimal(Taxon{}) {
		t.Error("expected empty iconic group to be excluded")
	}
}
