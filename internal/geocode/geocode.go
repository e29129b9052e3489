// Package geocode resolves free-text place labels to coordinates via a
// Nominatim-compatible HTTP endpoint. Lookups happen once, at complaint
// submission, and are never retried inline; results are cached in Redis.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"civicsense/backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// Geocoder resolves a place label to coordinates. ok is false when the
// place is unknown; err reports transport-level failures. Callers treat
// both as "no coordinates".
type Geocoder interface {
	Lookup(ctx context.Context, place string) (lat, lon float64, ok bool, err error)
}

// HTTPGeocoder is the production Geocoder. Redis may be nil (no cache).
type HTTPGeocoder struct {
	BaseURL string
	Client  *http.Client
	Redis   *redis.Client
}

// NewHTTPGeocoder creates a geocoder against baseURL with the standard
// request timeout.
func NewHTTPGeocoder(baseURL string, rdb *redis.Client) *HTTPGeocoder {
	return &HTTPGeocoder{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: config.GeocodeTimeout},
		Redis:   rdb,
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *HTTPGeocoder) Lookup(ctx context.Context, place string) (float64, float64, bool, error) {
	cacheKey := "geo:" + place

	if g.Redis != nil {
		cached, err := g.Redis.Get(ctx, cacheKey).Result()
		if err == nil {
			if lat, lon, ok := parseCached(cached); ok {
				return lat, lon, true, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("ERROR: Geocode cache read for %q failed: %v", place, err)
		}
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1",
		g.BaseURL, url.QueryEscape(place))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, false, err
	}
	// Nominatim rejects requests without an identifying agent.
	req.Header.Set("User-Agent", "civicsense-backend")

	resp, err := g.Client.Do(req)
	if err != nil {
		return 0, 0, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, false, fmt.Errorf("geocoder returned %s", resp.Status)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, false, err
	}
	if len(results) == 0 {
		return 0, 0, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("bad latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("bad longitude %q: %w", results[0].Lon, err)
	}

	if g.Redis != nil {
		value := fmt.Sprintf("%v,%v", lat, lon)
		if err := g.Redis.Set(ctx, cacheKey, value, config.GeocodeCacheTTL).Err(); err != nil {
			log.Printf("ERROR: Geocode cache write for %q failed: %v", place, err)
		}
	}

	return lat, lon, true, nil
}

func parseCached(value string) (float64, float64, bool) {
	var lat, lon float64
	if _, err := fmt.Sscanf(value, "%f,%f", &lat, &lon); err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
