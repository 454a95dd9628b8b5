package wildlife

import (
	"context"
	"fmt"
	"log"

	"github.com/TrailSight/TS-Backend/internal/geo"
	"github.com/TrailSight/TS-Backend/internal/wildlife/inat"
	"github.com/lib/pq"
)

// ObservationSource yields normalized observation records on or after the
// given lower date bound (d1 semantics: inclusive per calendar day).
type ObservationSource interface {
	FetchSince(ctx context.Context, since string) ([]inat.Record, error)
}

// TaxonSource fetches taxon details for ids referenced by new sightings.
// *inat.Client satisfies this.
type TaxonSource interface {
	FetchTaxon(ctx context.Context, id int64) (*inat.Taxon, error)
}

// APISource adapts the iNaturalist client to ObservationSource with a
// fixed bounding box and page budget.
type APISource struct {
	Client *inat.Client
	Params inat.SearchParams
}

func (s APISource) FetchSince(ctx context.Context, since string) ([]inat.Record, error) {
	p := s.Params
	p.Since = since
	p.Order = "asc"

	observations, err := s.Client.FetchObservations(ctx, p)
	if err != nil {
		return nil, err
	}

	records := make([]inat.Record, 0, len(observations))
	for _, obs := range observations {
		if rec, ok := inat.NormalizeObservation(obs); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Syncer runs the incremental fetch-match-store pipeline for a location.
type Syncer struct {
	store  *Store
	source ObservationSource
	taxa   TaxonSource
	rec    Reconciler

	// DefaultSince is the lower date bound used for a location with no
	// stored sightings yet (first run).
	DefaultSince string
}

func NewSyncer(store *Store, source ObservationSource, taxa TaxonSource, rec Reconciler, defaultSince string) *Syncer {
	return &Syncer{
		store:        store,
		source:       source,
		taxa:         taxa,
		rec:          rec,
		DefaultSince: defaultSince,
	}
}

// SyncSummary reports what one location sync did.
type SyncSummary struct {
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name"`
	Fetched      int    `json:"fetched"`
	AfterFilter  int    `json:"after_watermark_filter"`
	InLocation   int    `json:"in_location"`
	OnTrail      int    `json:"on_trail"`
	Inserted     int    `json:"inserted"`
	TaxaAdded    int    `json:"taxa_added"`
}

// SyncLocation fetches new observations for one location, geofences and
// trail-matches them, stores the new ones, and bumps the cached counters
// by exactly the number of rows inserted. Running it twice over an
// unchanged upstream inserts nothing the second time and moves no
// counter.
func (sy *Syncer) SyncLocation(ctx context.Context, loc Location) (SyncSummary, error) {
	summary := SyncSummary{LocationID: loc.ID.String(), LocationName: loc.Name}

	ring, err := geo.ParsePolygon(loc.Geometry)
	if err != nil {
		return summary, fmt.Errorf("location %s has bad geometry: %w", loc.Name, err)
	}

	candidates, err := sy.store.TrailCandidates(ctx, loc.ID)
	if err != nil {
		return summary, err
	}

	watermark, err := sy.store.LatestSighting(ctx, loc.ID)
	if err != nil {
		return summary, err
	}
	since := sy.DefaultSince
	if watermark != nil {
		since = watermark.ObservedOn
	}

	records, err := sy.source.FetchSince(ctx, since)
	if err != nil {
		return summary, fmt.Errorf("fetch observations since %s: %w", since, err)
	}
	summary.Fetched = len(records)

	batch := make([]Sighting, 0, len(records))
	for _, rec := range records {
		batch = append(batch, recordToSighting(rec))
	}

	batch = sy.rec.FilterSince(batch, watermark)
	summary.AfterFilter = len(batch)

	// Geofence + trail-match; observations outside the location are
	// discarded.
	kept := batch[:0]
	for i := range batch {
		if sy.rec.Assign(&batch[i], loc.ID, ring, candidates) {
			kept = append(kept, batch[i])
		}
	}
	batch = kept
	summary.InLocation = len(batch)
	for _, s := range batch {
		if s.TrailID != nil {
			summary.OnTrail++
		}
	}

	taxaByID := make(map[int64]inat.Taxon, len(records))
	for _, rec := range records {
		taxaByID[rec.Taxon.ID] = rec.Taxon
	}
	summary.TaxaAdded, err = sy.ensureTaxa(ctx, batch, taxaByID)
	if err != nil {
		return summary, err
	}

	inserted, err := sy.insertNew(ctx, batch)
	if err != nil {
		return summary, err
	}
	summary.Inserted = len(inserted)

	deltas := CountDeltas(inserted)
	if err := sy.store.ApplyDeltas(ctx, loc.ID, deltas); err != nil {
		return summary, err
	}

	return summary, nil
}

// ensureTaxa fetches and stores details for taxa the batch references
// that are not in the database yet. A failed fetch skips that taxon with
// a warning; the sighting still gets stored.
func (sy *Syncer) ensureTaxa(ctx context.Context, batch []Sighting, fallback map[int64]inat.Taxon) (int, error) {
	ids := make([]int64, 0, len(batch))
	for _, s := range batch {
		ids = append(ids, s.TaxonID)
	}

	missing, err := sy.store.MissingTaxonIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, id := range missing {
		detail, err := sy.taxa.FetchTaxon(ctx, id)
		if err != nil {
			log.Printf("[sync] taxon %d fetch failed, skipping: %v", id, err)
			continue
		}
		if detail == nil {
			// Not found upstream; fall back to the partial taxon nested
			// in the observation so the reference is not dangling.
			if t, ok := fallback[id]; ok {
				detail = &t
			} else {
				continue
			}
		}

		taxon := taxonModel(*detail)
		if err := sy.store.InsertTaxon(ctx, &taxon); err != nil {
			log.Printf("[sync] taxon %d insert failed, skipping: %v", id, err)
			continue
		}
		added++
	}
	return added, nil
}

// insertNew stores the batch create-if-absent and returns only the rows
// actually inserted. A failed insert logs and continues; the job is
// partial-failure tolerant at item granularity.
func (sy *Syncer) insertNew(ctx context.Context, batch []Sighting) ([]Sighting, error) {
	ids := make([]int64, 0, len(batch))
	for _, s := range batch {
		ids = append(ids, s.ID)
	}
	existing, err := sy.store.ExistingSightingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var inserted []Sighting
	for i := range batch {
		if existing[batch[i].ID] {
			continue
		}
		ok, err := sy.store.InsertSighting(ctx, &batch[i])
		if err != nil {
			log.Printf("[sync] sighting %d insert failed, skipping: %v", batch[i].ID, err)
			continue
		}
		if ok {
			inserted = append(inserted, batch[i])
		}
	}
	return inserted, nil
}

func recordToSighting(rec inat.Record) Sighting {
	return Sighting{
		ID:         rec.ID,
		ObservedOn: rec.ObservedOn,
		ObservedAt: rec.ObservedAt,
		PlaceGuess: rec.PlaceGuess,
		Latitude:   rec.Latitude,
		Longitude:  rec.Longitude,
		TaxonID:    rec.Taxon.ID,
		ImageURLs:  pq.StringArray(rec.ImageURLs),
	}
}

func taxonModel(t inat.Taxon) Taxon {
	return Taxon{
		ID:                  t.ID,
		Name:                t.Name,
		PreferredCommonName: t.PreferredCommonName,
		Rank:                t.Rank,
		IconicTaxonName:     t.IconicTaxonName,
		AncestorIDs:         pq.StringArray(inat.AncestorIDStrings(t)),
		PhotoURL:            inat.PhotoURL(t),
	}
}
