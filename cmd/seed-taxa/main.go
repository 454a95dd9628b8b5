// Seeds the taxa table from the unique taxon ids referenced by an
// observations CSV. Each taxon is fetched individually with bounded
// retry, so the job survives rate limiting.
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/TrailSight/TS-Backend/internal/db"
	"github.com/TrailSight/TS-Backend/internal/wildlife"
	"github.com/TrailSight/TS-Backend/internal/wildlife/inat"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
)

func main() {
	csvPath := flag.String("csv", "observations.csv", "observations CSV to read taxon ids from")
	limit := flag.Int("limit", 600, "maximum number of taxa to fetch")
	flag.Parse()

	_ = godotenv.Load(".env.local")

	ids, err := uniqueTaxonIDs(*csvPath)
	if err != nil {
		log.Fatal("Failed to read taxon ids: ", err)
	}
	fmt.Printf("Found %d unique taxon ids\n", len(ids))

	gdb, err := db.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := wildlife.Init(gdb); err != nil {
		log.Fatal("Failed to initialize wildlife schema: ", err)
	}

	store := wildlife.NewStore(gdb)
	client := inat.NewClient()
	ctx := context.Background()

	missing, err := store.MissingTaxonIDs(ctx, ids)
	if err != nil {
		log.Fatal("Failed to check existing taxa: ", err)
	}
	fmt.Printf("%d taxa missing from the database\n", len(missing))

	inserted := 0
	failed := 0

	for _, id := range missing {
		if inserted >= *limit {
			fmt.Printf("Reached limit of %d taxa, stopping\n", *limit)
			break
		}

		detail, err := client.FetchTaxon(ctx, id)
		if err != nil {
			log.Printf("Failed to fetch taxon %d: %v", id, err)
			failed++
			continue
		}
		if detail == nil {
			log.Printf("Taxon %d not found upstream, skipping", id)
			continue
		}

		taxon := wildlife.Taxon{
			ID:                  detail.ID,
			Name:                detail.Name,
			PreferredCommonName: detail.PreferredCommonName,
			Rank:                detail.Rank,
			IconicTaxonName:     detail.IconicTaxonName,
			AncestorIDs:         pq.StringArray(inat.AncestorIDStrings(*detail)),
			PhotoURL:            inat.PhotoURL(*detail),
		}
		if err := store.InsertTaxon(ctx, &taxon); err != nil {
			log.Printf("Failed to insert taxon %d: %v", id, err)
			failed++
			continue
		}

		inserted++
		if inserted%100 == 0 {
			fmt.Printf("Inserted %d taxa so far...\n", inserted)
		}
	}

	fmt.Printf("Done! Inserted %d taxa, %d failed\n", inserted, failed)
}

// uniqueTaxonIDs extracts the distinct taxon_id values from an
// observations CSV, ascending.
func uniqueTaxonIDs(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	col := -1
	for i, h := range records[0] {
		if strings.TrimSpace(h) == "taxon_id" {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("missing taxon_id column")
	}

	seen := map[int64]bool{}
	for _, rec := range records[1:] {
		if col >= len(rec) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rec[col]), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		seen[id] = true
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
