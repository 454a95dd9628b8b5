// Fetches observations for the configured bounding box and writes them
// to a CSV for inspection or seeding. The lower date bound defaults to
// the configured lookback window.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/TrailSight/TS-Backend/internal/jobconfig"
	"github.com/TrailSight/TS-Backend/internal/wildlife/inat"
	"github.com/joho/godotenv"
)

var csvHeader = []string{
	"id", "observed_on", "observed_at", "place_guess", "latitude", "longitude",
	"taxon_id", "scientific_name", "preferred_common_name", "iconic_taxon_name", "image_urls",
}

func main() {
	configPath := flag.String("config", "", "path to job config YAML (defaults built in)")
	outPath := flag.String("out", "observations.csv", "output CSV path")
	animalsOnly := flag.Bool("animals-only", false, "keep only animal taxa")
	flag.Parse()

	_ = godotenv.Load(".env.local")

	cfg, err := jobconfig.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load job config: ", err)
	}

	client := inat.NewClient()
	ctx := context.Background()

	observations, err := client.FetchObservations(ctx, inat.SearchParams{
		NELat:    cfg.BoundingBox.NELat,
		NELng:    cfg.BoundingBox.NELng,
		SWLat:    cfg.BoundingBox.SWLat,
		SWLng:    cfg.BoundingBox.SWLng,
		Since:    cfg.DefaultSince(time.Now()),
		Order:    "desc",
		PerPage:  cfg.PerPage,
		MaxPages: cfg.MaxPages,
	})
	if err != nil {
		log.Fatal("Fetch failed: ", err)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatal("Failed to create output file: ", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		log.Fatal("Failed to write header: ", err)
	}

	written := 0
	skipped := 0
	for _, obs := range observations {
		rec, ok := inat.NormalizeObservation(obs)
		if !ok {
			skipped++
			continue
		}
		if *animalsOnly && !inat.IsAnimal(rec.Taxon) {
			skipped++
			continue
		}

		observedAt := ""
		if rec.ObservedAt != nil {
			observedAt = rec.ObservedAt.Format(time.RFC3339)
		}

		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.ObservedOn,
			observedAt,
			rec.PlaceGuess,
			strconv.FormatFloat(rec.Latitude, 'f', -1, 64),
			strconv.FormatFloat(rec.Longitude, 'f', -1, 64),
			strconv.FormatInt(rec.Taxon.ID, 10),
			rec.Taxon.Name,
			rec.Taxon.PreferredCommonName,
			rec.Taxon.IconicTaxonName,
			strings.Join(rec.ImageURLs, "|"),
		}
		if err := w.Write(row); err != nil {
			log.Fatal("Failed to write row: ", err)
		}
		written++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatal("Failed to flush CSV: ", err)
	}

	fmt.Printf("Done! Wrote %d observations to %s (skipped %d)\n", written, *outPath, skipped)
}
