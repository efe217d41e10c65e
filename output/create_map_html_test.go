package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMapHTMLPointMode(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "html", "exp1_map.html")

	params := MapParams{
		Title:           "exp1",
		CenterLat:       29.0,
		CenterLon:       100.3,
		Zoom:            8,
		BaseTiles:       BaseTileURL("OpenStreetMap"),
		BaseAttribution: "OpenStreetMap",
		Layers: []MapLayer{
			{Name: "Year 2019", TileURL: "https://tiles.test/a/{z}/{x}/{y}", Attribution: "GEE 2019"},
			{Name: "Year 2020", TileURL: "https://tiles.test/b/{z}/{x}/{y}", Attribution: "GEE 2020"},
			{Name: "Year 2021", TileURL: "https://tiles.test/c/{z}/{x}/{y}", Attribution: "GEE 2021"},
		},
		Circle: &MapCircle{Lat: 29.0, Lon: 100.3, RadiusMeters: 50_000, Label: "Study area (radius: 50 km)"},
	}

	require.NoError(t, CreateMapHTML(params, outputPath))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	html := string(content)

	// One base layer plus exactly one tile overlay per year.
	assert.Equal(t, 4, strings.Count(html, "L.tileLayer("))
	assert.Equal(t, 3, strings.Count(html, "overlays['"))
	for _, name := range []string{"Year 2019", "Year 2020", "Year 2021"} {
		assert.Contains(t, html, name)
	}

	// Exactly one boundary overlay.
	assert.Equal(t, 1, strings.Count(html, "L.circle("))
	// html/template's JS escaper pads interpolated numbers with spaces, so
	// collapse whitespace before matching.
	assert.Contains(t, strings.Join(strings.Fields(html), " "), "radius: 50000")
	assert.Contains(t, html, "Study area (radius: 50 km)")

	assert.Contains(t, html, "L.control.layers")
}

func TestCreateMapHTMLGlobalModeHasNoBoundary(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "map.html")

	params := MapParams{
		Title:     "global",
		Zoom:      2,
		BaseTiles: BaseTileURL("OpenStreetMap"),
		Layers:    []MapLayer{{Name: "Year 2021", TileURL: "https://tiles.test/{z}/{x}/{y}"}},
	}

	require.NoError(t, CreateMapHTML(params, outputPath))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "L.circle(")
}

func TestBaseTileURL(t *testing.T) {
	assert.Equal(t, "https://tile.openstreetmap.org/{z}/{x}/{y}.png", BaseTileURL("OpenStreetMap"))
	assert.Equal(t, "https://basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png", BaseTileURL("CartoDB Positron"))
	custom := "https://example.test/{z}/{x}/{y}.png"
	assert.Equal(t, custom, BaseTileURL(custom))
}
