package wildlife

import (
	"fmt"

	"github.com/TrailSight/TS-Backend/internal/db"
	"gorm.io/gorm"
)

// Init ensures the wildlife schema and tables exist.
func Init(gdb *gorm.DB) error {
	if err := db.EnsureSchema(gdb, "wildlife"); err != nil {
		return fmt.Errorf("ensure schema wildlife: %w", err)
	}

	if err := gdb.AutoMigrate(
		&Location{},
		&Trail{},
		&Sighting{},
		&Taxon{},
	); err != nil {
		return fmt.Errorf("auto-migrate wildlife tables: %w", err)
	}

	return nil
}
