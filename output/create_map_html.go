package output

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/earthtrend/earthtrend-research-cli/internal/ee"
	"github.com/earthtrend/earthtrend-research-cli/internal/trend"
)

// MapLayer is one togglable tile overlay, rendered server-side by Earth
// Engine from a yearly composite.
type MapLayer struct {
	Name        string
	TileURL     string
	Attribution string
}

// MapCircle is the boundary overlay drawn in point/radius mode.
type MapCircle struct {
	Lat          float64
	Lon          float64
	RadiusMeters float64
	Label        string
}

// MapParams describes the interactive map document: a base layer, one overlay
// per year, and an optional boundary circle.
type MapParams struct {
	Title           string
	CenterLat       float64
	CenterLon       float64
	Zoom            int
	BaseTiles       string
	BaseAttribution string
	Layers          []MapLayer
	Circle          *MapCircle
}

// BuildYearLayers resolves one tile overlay per yearly composite by opening a
// map session for each year's image handle.
func BuildYearLayers(ctx context.Context, client *ee.Client, results []trend.YearResult, vis ee.VisParams, attribution string) ([]MapLayer, error) {
	layers := make([]MapLayer, 0, len(results))
	for _, r := range results {
		tileURL, err := client.MapTiles(ctx, r.Image, vis)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", r.Year, err)
		}
		layers = append(layers, MapLayer{
			Name:        fmt.Sprintf("Year %d", r.Year),
			TileURL:     tileURL,
			Attribution: fmt.Sprintf("%s %d", attribution, r.Year),
		})
	}
	return layers, nil
}

// BaseTileURL maps the folium-style tile names used in the config files onto
// URL templates. Values already containing a {z} placeholder pass through.
func BaseTileURL(name string) string {
	if strings.Contains(name, "{z}") {
		return name
	}
	switch strings.ToLower(name) {
	case "cartodb positron":
		return "https://basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png"
	case "cartodb dark_matter":
		return "https://basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png"
	default:
		return "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	}
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer('{{.BaseTiles}}', {attribution: '{{.BaseAttribution}}'}).addTo(map);
var overlays = {};
{{range .Layers}}overlays['{{.Name}}'] = L.tileLayer('{{.TileURL}}', {attribution: '{{.Attribution}}', opacity: 0.75}).addTo(map);
{{end}}{{if .Circle}}L.circle([{{.Circle.Lat}}, {{.Circle.Lon}}], {radius: {{.Circle.RadiusMeters}}, color: 'red', weight: 2, fill: true, fillOpacity: 0.2}).bindPopup('{{.Circle.Label}}').addTo(map);
{{end}}L.control.layers(null, overlays).addTo(map);
</script>
</body>
</html>
`))

// CreateMapHTML writes the standalone interactive map document. The file is
// self-contained apart from the Leaflet CDN assets; no server runs afterward.
func CreateMapHTML(params MapParams, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create map output directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create map file: %w", err)
	}
	defer file.Close()

	if err := mapTemplate.Execute(file, params); err != nil {
		return fmt.Errorf("failed to render map template: %w", err)
	}
	return nil
}
