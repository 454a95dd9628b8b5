// Backfill job: recompute every location's trail_count and
// sighting_count, and every trail's sighting_count, from authoritative
// row counts. Converges counters that drifted from missed or doubled
// increments.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/TrailSight/TS-Backend/internal/db"
	"github.com/TrailSight/TS-Backend/internal/wildlife"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")

	gdb, err := db.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := wildlife.Init(gdb); err != nil {
		log.Fatal("Failed to initialize wildlife schema: ", err)
	}

	store := wildlife.NewStore(gdb)
	ctx := context.Background()

	locations, err := store.Locations(ctx)
	if err != nil {
		log.Fatal("Failed to fetch locations: ", err)
	}

	failed := 0
	for _, loc := range locations {
		sightings, trails, err := store.RecountLocation(ctx, loc.ID)
		if err != nil {
			log.Printf("ERROR recounting %s: %v", loc.Name, err)
			failed++
			continue
		}
		fmt.Printf("%s: trails=%d sightings=%d\n", loc.Name, trails, sightings)
	}

	fmt.Printf("Done! Recounted %d locations, %d failed\n", len(locations)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
