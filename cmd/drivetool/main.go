package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/tkrajina/gpxgo/gpx"

	"autodrive-service/internal/adapters/scene"
	"autodrive-service/internal/autodrive"
	"autodrive-service/internal/config"
	"autodrive-service/internal/domain"
	"autodrive-service/internal/ports"
)

// drivetool runs an automated drive headlessly over a GPX track: handy for
// exercising the engine (sampling, prefetch pacing, buffering) without the
// HTTP layer or a UI.
func main() {
	gpxPath := flag.String("gpx", "", "path to a GPX track to drive")
	speedName := flag.String("speed", "fast", "playback speed: slow, normal or fast")
	interval := flag.Float64("interval", 50, "route sample spacing in meters")
	useMock := flag.Bool("mock", false, "use an offline scene provider")
	flag.Parse()

	if *gpxPath == "" {
		log.Fatal("-gpx is required")
	}

	speed, ok := domain.ParseDriveSpeed(*speedName)
	if !ok {
		log.Fatalf("unknown speed %q", *speedName)
	}

	polyline, err := loadPolyline(*gpxPath)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded track points=%d file=%s", len(polyline), *gpxPath)

	provider, err := buildProvider(*useMock)
	if err != nil {
		log.Fatal(err)
	}

	cfg := autodrive.DefaultConfig()
	cfg.Speed = speed
	cfg.SampleIntervalMeters = *interval

	engine := autodrive.NewEngine(provider, nil, cfg)
	defer engine.Stop()

	if err := engine.Start(context.Background(), domain.Route{Polyline: polyline}); err != nil {
		log.Fatal(err)
	}

	snap := engine.Snapshot()
	bar := progressbar.Default(int64(snap.TotalPoints-1), "Driving")

	for {
		time.Sleep(200 * time.Millisecond)
		snap = engine.Snapshot()
		bar.Set(snap.CurrentIndex)

		switch snap.State.Phase {
		case domain.PhaseCompleted:
			bar.Finish()
			log.Printf("drive finished points=%d", snap.TotalPoints)
			return
		case domain.PhaseFailed:
			log.Fatalf("drive failed: %s", snap.State.Message)
		}
	}
}

func loadPolyline(path string) ([]domain.Coordinates, error) {
	gpxFile, err := gpx.ParseFile(path)
	if err != nil {
		return nil, err
	}

	var polyline []domain.Coordinates
	for _, track := range gpxFile.Tracks {
		for _, segment := range track.Segments {
			for _, p := range segment.Points {
				polyline = append(polyline, domain.Coordinates{Lat: p.Latitude, Lon: p.Longitude})
			}
		}
	}
	return polyline, nil
}

func buildProvider(useMock bool) (ports.SceneProvider, error) {
	if useMock {
		return scene.NewMockSceneProvider(), nil
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	panoKey := os.Getenv("PANO_API_KEY")
	if strings.TrimSpace(panoKey) == "" {
		log.Fatal("PANO_API_KEY is required without -mock")
	}

	return scene.NewPanoramaProvider(panoKey, config.Get("PANO_BASE_URL", "https://pano.example.com"), nil)
}
