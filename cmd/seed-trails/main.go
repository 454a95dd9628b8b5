// Seeds the trails table from an OSM-derived CSV export
// (id,name,surface,trail_visibility,geometry,location_id) where geometry
// is WKT LINESTRING text.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/TrailSight/TS-Backend/internal/db"
	"github.com/TrailSight/TS-Backend/internal/seedimport"
	"github.com/TrailSight/TS-Backend/internal/wildlife"
	"github.com/joho/godotenv"
)

func main() {
	csvPath := flag.String("csv", "tables/trails_table.csv", "path to trails seed CSV")
	flag.Parse()

	_ = godotenv.Load(".env.local")

	rows, err := seedimport.ParseTrailsCSV(*csvPath)
	if err != nil {
		log.Fatal("Failed to parse trails CSV: ", err)
	}

	gdb, err := db.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := wildlife.Init(gdb); err != nil {
		log.Fatal("Failed to initialize wildlife schema: ", err)
	}

	res, err := seedimport.ImportTrails(gdb, rows)
	if err != nil {
		log.Fatal("Import failed: ", err)
	}

	fmt.Printf("Done! Imported %d trails, skipped %d\n", res.Imported, res.Skipped)
}
