package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/TrailSight/TS-Backend/internal/db"
	"github.com/TrailSight/TS-Backend/internal/jobconfig"
	"github.com/TrailSight/TS-Backend/internal/middleware"
	"github.com/TrailSight/TS-Backend/internal/wildlife"
	"github.com/TrailSight/TS-Backend/internal/wildlife/inat"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")

	gdb, err := db.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := wildlife.Init(gdb); err != nil {
		log.Fatal("Failed to initialize wildlife schema: ", err)
	}

	cfg, err := jobconfig.Load(os.Getenv("JOB_CONFIG"))
	if err != nil {
		log.Fatal("Failed to load job config: ", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
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
	handlers := wildlife.NewHandlers(store, client, syncer)

	adminMW := middleware.AdminTokenMiddleware(os.Getenv("ADMIN_TOKEN_HASH"))

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/wildlife", handlers.SetupRoutes(adminMW))

	fmt.Printf("Server listening on port :%s...\n", port)

	http.ListenAndServe("0.0.0.0:"+port, r)
}
