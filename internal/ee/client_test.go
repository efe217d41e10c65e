package ee

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/earthtrend/earthtrend-research-cli/internal/logging"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGeometry() *orb.Bound {
	b := orb.Bound{Min: orb.Point{10, 20}, Max: orb.Point{30, 40}}
	return &b
}

func TestReduceRegionValue(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"result": {"B": 42.5}}`))
	}))
	defer srv.Close()

	client := NewClientWithHTTPClient("test", srv.URL, srv.Client(), logging.Discard())
	img := NewImageCollection("ds").FilterDate("2020-01-01", "2020-12-31").Select("B").Mean()

	value, err := client.ReduceRegion(context.Background(), img, RectangleGeometry(*testGeometry()), ReducerMean, "B", 1000, 1e9, true)
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, 42.5, *value)
	assert.Equal(t, "/projects/test/value:compute", gotPath)
}

func TestReduceRegionAbsent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "null value", body: `{"result": {"B": null}}`},
		{name: "missing band", body: `{"result": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClientWithHTTPClient("test", srv.URL, srv.Client(), logging.Discard())
			value, err := client.ReduceRegion(context.Background(), PixelArea(), RectangleGeometry(*testGeometry()), ReducerSum, "B", 1000, 1e9, true)
			require.NoError(t, err)
			assert.Nil(t, value)
		})
	}
}

func TestReduceRegionServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClientWithHTTPClient("test", srv.URL, srv.Client(), logging.Discard())
	_, err := client.ReduceRegion(context.Background(), PixelArea(), RectangleGeometry(*testGeometry()), ReducerSum, "B", 1000, 1e9, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestMapTiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/test/maps", r.URL.Path)
		w.Write([]byte(`{"name": "projects/test/maps/abcd"}`))
	}))
	defer srv.Close()

	client := NewClientWithHTTPClient("test", srv.URL, srv.Client(), logging.Discard())
	img := NewImageCollection("ds").FilterDate("2020-01-01", "2020-12-31").Select("B").Mean()

	tileURL, err := client.MapTiles(context.Background(), img, VisParams{Min: 0, Max: 100, Palette: []string{"black", "white"}})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/projects/test/maps/abcd/tiles/{z}/{x}/{y}", tileURL)
}

func TestMapTilesMissingName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClientWithHTTPClient("test", srv.URL, srv.Client(), logging.Discard())
	_, err := client.MapTiles(context.Background(), PixelArea(), VisParams{})
	require.Error(t, err)
}

func TestBufferedPoint(t *testing.T) {
	geom := BufferedPoint(orb.Point{100, 30}, 50_000)
	require.Equal(t, "Polygon", geom.Type)

	poly, ok := geom.Coordinates.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly, 1)
	require.Len(t, poly[0], 65)
	// The ring closes on itself.
	assert.Equal(t, poly[0][0], poly[0][64])

	bound := poly.Bound()
	assert.InDelta(t, 30, bound.Center()[1], 1e-6)
	assert.InDelta(t, 100, bound.Center()[0], 1e-6)
	// Latitude half-span is radius/111km; the longitude span is wider at 30N.
	assert.InDelta(t, 50_000.0/111_000.0, bound.Max[1]-30, 1e-6)
	assert.Greater(t, bound.Max[0]-100, bound.Max[1]-30)
}

func TestBufferedPointPolarCenter(t *testing.T) {
	geom := BufferedPoint(orb.Point{0, 90}, 50_000)
	poly, ok := geom.Coordinates.(orb.Polygon)
	require.True(t, ok)

	// The longitude scaling is capped near the pole: every vertex stays
	// finite and the ring keeps a bounded span.
	for _, pt := range poly[0] {
		require.False(t, math.IsNaN(pt[0]) || math.IsInf(pt[0], 0))
		require.False(t, math.IsNaN(pt[1]) || math.IsInf(pt[1], 0))
	}
	bound := poly.Bound()
	assert.Less(t, bound.Max[0]-bound.Min[0], 60.0)
}
