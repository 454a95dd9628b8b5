// Seeds the locations table from a CSV export (id,name,geometry,...)
// where geometry is WKT POLYGON text.
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
	csvPath := flag.String("csv", "tables/locations_seed.csv", "path to locations seed CSV")
	flag.Parse()

	_ = godotenv.Load(".env.local")

	rows, err := seedimport.ParseLocationsCSV(*csvPath)
	if err != nil {
		log.Fatal("Failed to parse locations CSV: ", err)
	}

	gdb, err := db.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := wildlife.Init(gdb); err != nil {
		log.Fatal("Failed to initialize wildlife schema: ", err)
	}

	res, err := seedimport.ImportLocations(gdb, rows)
	if err != nil {
		log.Fatal("Import failed: ", err)
	}

	fmt.Printf("Done! Imported %d locations, skipped %d\n", res.Imported, res.Skipped)
}
