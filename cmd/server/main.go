package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"autodrive-service/internal/adapters/cache"
	"autodrive-service/internal/adapters/geocode"
	"autodrive-service/internal/adapters/scene"
	"autodrive-service/internal/api"
	"autodrive-service/internal/autodrive"
	"autodrive-service/internal/config"
	"autodrive-service/internal/platform/db"
	"autodrive-service/internal/platform/ratelimit"
	"autodrive-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (panorama metadata API, geocoding API, SQLite
// scene cache) behind ports and starts the HTTP control surface.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	dbPath := config.Get("DB_PATH", "data/scenes.db")
	panoBaseURL := config.Get("PANO_BASE_URL", "https://pano.example.com")
	geoBaseURL := config.Get("GEOCODE_BASE_URL", "https://api.openrouteservice.org")

	panoKey := os.Getenv("PANO_API_KEY")
	if strings.TrimSpace(panoKey) == "" {
		log.Fatal("PANO_API_KEY is required")
	}
	geoKey := os.Getenv("GEOCODE_API_KEY")
	if strings.TrimSpace(geoKey) == "" {
		log.Fatal("GEOCODE_API_KEY is required")
	}

	sqlDB, err := db.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	sceneCache := cache.NewSqliteSceneCache(sqlDB)
	if err := sceneCache.InitSchema(context.Background()); err != nil {
		log.Fatal(err)
	}

	// One admission window covers both the scene prefetch path and the
	// type-ahead search path: they share the provider quota.
	limiter := ratelimit.NewSlidingWindow(
		config.GetInt("RATE_MAX_REQUESTS", 40),
		config.GetDuration("RATE_WINDOW", time.Minute),
	)

	sceneProvider, err := scene.NewPanoramaProvider(panoKey, panoBaseURL, sceneCache)
	if err != nil {
		log.Fatal(err)
	}

	searchProvider, err := geocode.NewGeoSearchProvider(geoKey, geoBaseURL)
	if err != nil {
		log.Fatal(err)
	}

	engineCfg := autodrive.DefaultConfig()
	engineCfg.SampleIntervalMeters = float64(config.GetInt("AUTODRIVE_SAMPLE_INTERVAL_METERS", 50))
	engineCfg.InitialFetchCount = config.GetInt("AUTODRIVE_INITIAL_FETCH", 5)
	engineCfg.PrefetchLookahead = config.GetInt("AUTODRIVE_LOOKAHEAD", 10)
	engineCfg.PrefetchInterval = config.GetDuration("AUTODRIVE_PREFETCH_INTERVAL", 500*time.Millisecond)
	engineCfg.FetchConcurrency = config.GetInt("AUTODRIVE_FETCH_CONCURRENCY", 4)

	engine := autodrive.NewEngine(sceneProvider, limiter, engineCfg)
	defer engine.Stop()

	suggestions := services.NewSuggestionService(searchProvider, cache.NewCoordinateCache(), limiter)

	router := api.NewRouter(engine, suggestions)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
