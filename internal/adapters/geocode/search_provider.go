package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"autodrive-service/internal/domain"
	"autodrive-service/internal/platform/obs"
	"autodrive-service/internal/ports"
)

// GeoSearchProvider implements GeocodeSearchProvider against an
// OpenRouteService-style geocoding API (/geocode/autocomplete and
// /geocode/search).
//
// The provider is safe for concurrent use.
type GeoSearchProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
}

func NewGeoSearchProvider(apiKey string, baseURL string) (*GeoSearchProvider, error) {
	if apiKey == "" {
		return nil, errors.New("geocode api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}

	return &GeoSearchProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: baseURL,
	}, nil
}

// normalize ensures consistent query text by collapsing whitespace.
func (g *GeoSearchProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type featureCollection struct {
	Features []struct {
		Properties struct {
			Name   string `json:"name"`
			Region string `json:"region"`
			Label  string `json:"label"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Suggest returns type-ahead candidates for a partial query.
func (g *GeoSearchProvider) Suggest(ctx context.Context, query string) (_ []ports.Suggestion, err error) {
	defer obs.Time(ctx, "geocode.suggest")(&err)

	norm := g.normalize(query)
	if norm == "" {
		return nil, errors.New("suggest: query must be non-empty")
	}

	endpoint := g.baseURL + "/geocode/autocomplete"

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := g.newRequest(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("size", "5")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("execute autocomplete request: %w", err)
	}
	defer resp.Body.Close()

	var decoded featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode autocomplete response: %w", err)
	}

	out := make([]ports.Suggestion, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		subtitle := f.Properties.Region
		if subtitle == "" {
			subtitle = f.Properties.Label
		}
		out = append(out, ports.Suggestion{
			Title:    f.Properties.Name,
			Subtitle: subtitle,
		})
	}

	return out, nil
}

// Resolve geocodes a chosen suggestion into coordinates.
func (g *GeoSearchProvider) Resolve(ctx context.Context, title string, subtitle string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.resolve")(&err)

	text := g.normalize(title)
	if sub := g.normalize(subtitle); sub != "" {
		text = text + ", " + sub
	}
	if text == "" {
		return domain.Coordinates{}, errors.New("resolve: place description must be non-empty")
	}

	endpoint := g.baseURL + "/geocode/search"

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := g.newRequest(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", text)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute geocode request: %w", err)
	}
	defer resp.Body.Close()

	var decoded featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", text)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", text)
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}
