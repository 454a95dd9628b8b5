// Incremental sync job: for each location, fetch observations newer than
// the stored watermark, geofence and trail-match them, insert the new
// ones, and bump the cached counters.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/TrailSight/TS-Backend/internal/db"
	"github.com/TrailSight/TS-Backend/internal/jobconfig"
	"github.com/TrailSight/TS-Backend/internal/wildlife"
	"github.com/TrailSight/TS-Backend/internal/wildlife/inat"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "", "path to job config YAML (defaults built in)")
	flag.Parse()

	_ = godotenv.Load(".env.local")

	cfg, err := jobconfig.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load job config: ", err)
	}

	gdb, err := db.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := wildlife.Init(gdb); err != nil {
		log.Fatal("Failed to initialize wildlife schema: ", err)
	}

	store := wildlife.NewStore(gdb)
	client := inat.NewClient()
	source := wildlife.APISource{
		Client: client,
		Params: inat.SearchParams{
			NELat:    cfg.BoundingBox.NELat,
			NELng:    cfg.BoundingBox.NELng,
			SWLat:    cfg.BoundingBox.SWLat,
			SWLng:    cfg.BoundingBox.SWLng,
			PerPage:  cfg.PerPage,
			MaxPages: cfg.MaxPages,
		},
	}
	rec := wildlife.NewReconciler(cfg.MatchDistanceM, wildlife.WatermarkMode(cfg.WatermarkMode))
	syncer := wildlife.NewSyncer(store, source, client, rec, cfg.DefaultSince(time.Now()))

	ctx := context.Background()
	locations, err := store.Locations(ctx)
	if err != nil {
		log.Fatal("Failed to fetch locations: ", err)
	}
	if len(locations) == 0 {
		fmt.Println("No locations seeded; nothing to sync.")
		return
	}

	totalInserted := 0
	failed := 0

	for _, loc := range locations {
		fmt.Printf("========================================\n")
		fmt.Printf("Syncing %s (watermark mode: %s)\n", loc.Name, cfg.WatermarkMode)
		fmt.Printf("========================================\n")

		summary, err := syncer.SyncLocation(ctx, loc)
		if err != nil {
			log.Printf("  ERROR syncing %s: %v", loc.Name, err)
			failed++
			continue
		}

		fmt.Printf("  fetched=%d after_filter=%d in_location=%d on_trail=%d\n",
			summary.Fetched, summary.AfterFilter, summary.InLocation, summary.OnTrail)
		fmt.Printf("  inserted=%d taxa_added=%d\n\n", summary.Inserted, summary.TaxaAdded)
		totalInserted += summary.Inserted
	}

	fmt.Printf("========================================\n")
	fmt.Printf("Done! Locations: %d, Inserted: %d, Failed: %d\n", len(locations), totalInserted, failed)
	fmt.Printf("========================================\n")
	if failed > 0 {
		os.Exit(1)
	}
}
