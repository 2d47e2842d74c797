package scene

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"autodrive-service/internal/adapters/cache"
	"autodrive-service/internal/domain"
	"autodrive-service/internal/platform/obs"
	"autodrive-service/internal/ports"
)

// PanoramaProvider implements SceneProvider against a street-level panorama
// metadata API.
//
// It coordinates:
//   - Nearest-panorama lookup by coordinate
//   - Optional persistent scene-metadata caching
//   - Mapping provider "no coverage" responses to ErrSceneUnavailable
//
// Each fetch is a single attempt: the engine treats any failure as terminal
// for the point, so retrying here would only change semantics, not outcomes.
// The provider is safe for concurrent use.
type PanoramaProvider struct {
	session    *http.Client
	apiKey     string
	baseURL    string
	radius     int
	sceneCache *cache.SqliteSceneCache
}

func NewPanoramaProvider(apiKey string, baseURL string, sceneCache *cache.SqliteSceneCache) (*PanoramaProvider, error) {
	if apiKey == "" {
		return nil, errors.New("panorama api key is empty")
	}
	if baseURL == "" {
		return nil, errors.New("panorama base url is empty")
	}

	return &PanoramaProvider{
		session:    &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
		radius:     50,
		sceneCache: sceneCache,
	}, nil
}

type metadataResponse struct {
	Status   string `json:"status"`
	PanoID   string `json:"pano_id"`
	ImageURL string `json:"image_url"`
	Location struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lng"`
	} `json:"location"`
}

// FetchScene resolves the nearest panorama for a coordinate.
// Cache hits skip the network entirely; cache write failures are logged and
// do not fail the fetch.
func (p *PanoramaProvider) FetchScene(ctx context.Context, position domain.Coordinates) (_ domain.SceneHandle, err error) {
	defer obs.Time(ctx, "scene.fetch")(&err)

	if p.sceneCache != nil {
		h, ok, err := p.sceneCache.Get(ctx, position)
		if err != nil {
			log.Printf("scene cache read failed: %v", err)
		} else if ok {
			return h, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/metadata", nil)
	if err != nil {
		return domain.SceneHandle{}, fmt.Errorf("create metadata request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	q.Set("key", p.apiKey)
	q.Set("lat", strconv.FormatFloat(position.Lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(position.Lon, 'f', 6, 64))
	q.Set("radius", strconv.Itoa(p.radius))
	req.URL.RawQuery = q.Encode()

	resp, err := p.session.Do(req)
	if err != nil {
		return domain.SceneHandle{}, fmt.Errorf("execute metadata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.SceneHandle{}, ports.ErrSceneUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		return domain.SceneHandle{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var decoded metadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.SceneHandle{}, fmt.Errorf("decode metadata response: %w", err)
	}

	if decoded.Status == "ZERO_RESULTS" {
		return domain.SceneHandle{}, ports.ErrSceneUnavailable
	}
	if decoded.Status != "OK" {
		return domain.SceneHandle{}, fmt.Errorf("metadata status %q", decoded.Status)
	}
	if decoded.PanoID == "" {
		return domain.SceneHandle{}, errors.New("metadata response missing pano_id")
	}

	handle := domain.SceneHandle{
		PanoID:   decoded.PanoID,
		ImageURL: decoded.ImageURL,
		Location: domain.Coordinates{Lat: decoded.Location.Lat, Lon: decoded.Location.Lon},
	}

	if p.sceneCache != nil {
		if err := p.sceneCache.Put(ctx, position, handle); err != nil {
			log.Printf("scene cache write failed: %v", err)
		}
	}

	return handle, nil
}
