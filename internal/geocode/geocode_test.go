package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"civicsense/backend/internal/geocode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLookup_Success parses a Nominatim-style response.
func TestLookup_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Main St", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Write([]byte(`[{"lat": "50.4501", "lon": "30.5234"}]`))
	}))
	defer server.Close()

	g := geocode.NewHTTPGeocoder(server.URL, nil)

	lat, lon, ok, err := g.Lookup(context.Background(), "Main St")

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 50.4501, lat)
	assert.Equal(t, 30.5234, lon)
}

// TestLookup_NoResults: an empty result set is a miss, not an error.
func TestLookup_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	g := geocode.NewHTTPGeocoder(server.URL, nil)

	_, _, ok, err := g.Lookup(context.Background(), "Nowhere In Particular")

	assert.NoError(t, err)
	assert.False(t, ok)
}

// TestLookup_ServerError surfaces non-200 responses as errors.
func TestLookup_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	g := geocode.NewHTTPGeocoder(server.URL, nil)

	_, _, ok, err := g.Lookup(context.Background(), "Main St")

	assert.Error(t, err)
	assert.False(t, ok)
}

// TestLookup_BadCoordinates rejects malformed payloads.
func TestLookup_BadCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat": "not-a-number", "lon": "30.5"}]`))
	}))
	defer server.Close()

	g := geocode.NewHTTPGeocoder(server.URL, nil)

	_, _, ok, err := g.Lookup(context.Background(), "Main St")

	assert.Error(t, err)
	assert.False(t, ok)
}
