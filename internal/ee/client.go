package ee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/earthtrend/earthtrend-research-cli/internal/properties"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultEndpoint  = "https://earthengine.googleapis.com/v1"
	earthEngineScope = "https://www.googleapis.com/auth/earthengine"
)

type Reducer string

const (
	ReducerMean Reducer = "mean"
	ReducerSum  Reducer = "sum"
)

// VisParams mirrors the service's visualization arguments for tile rendering:
// values are stretched over [Min, Max] and mapped onto the palette.
type VisParams struct {
	Min     float64
	Max     float64
	Palette []string
}

// Client talks to the Earth Engine REST API for one cloud project. All raster
// work (compositing, masking, reduction) happens server-side; the client only
// marshals expressions out and scalars back.
type Client struct {
	project  string
	endpoint string
	http     *http.Client
	log      *logrus.Logger
}

// NewClient authenticates with Google application-default credentials scoped
// to Earth Engine. Missing or unusable credentials are fatal for the run.
func NewClient(ctx context.Context, project string, log *logrus.Logger) (*Client, error) {
	ts, err := google.DefaultTokenSource(ctx, earthEngineScope)
	if err != nil {
		return nil, fmt.Errorf("failed to load Earth Engine credentials: %w", err)
	}
	c := NewClientWithHTTPClient(project, properties.EarthEngineEndpoint(), oauth2.NewClient(ctx, ts), log)
	log.Infof("Google Earth Engine init success, project name: %s", project)
	return c, nil
}

// NewClientWithHTTPClient wires an explicit transport and endpoint. Tests use
// it to point the client at a stub server without credentials.
func NewClientWithHTTPClient(project, endpoint string, httpClient *http.Client, log *logrus.Logger) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{project: project, endpoint: endpoint, http: httpClient, log: log}
}

// ReduceRegion computes a spatial reduction of the image over the geometry at
// the given scale, capped at maxPixels. With bestEffort the service degrades
// the scale instead of failing when the pixel budget would be exceeded.
//
// A nil result with a nil error means the service legitimately has no data
// for the region and interval (masked pixels, missing coverage); that is not
// an error. Service failures are returned as errors and are never retried.
func (c *Client) ReduceRegion(ctx context.Context, img *Image, geom *geojson.Geometry, reducer Reducer, band string, scale float64, maxPixels int64, bestEffort bool) (*float64, error) {
	payload := map[string]interface{}{
		"expression": expressionGraph(invocation("Image.reduceRegion", args{
			"image":      img.expr,
			"reducer":    invocation("Reducer."+string(reducer), args{}),
			"geometry":   geom,
			"scale":      scale,
			"maxPixels":  maxPixels,
			"bestEffort": bestEffort,
		})),
	}

	var decoded struct {
		Result map[string]*float64 `json:"result"`
	}
	url := fmt.Sprintf("%s/projects/%s/value:compute", c.endpoint, c.project)
	if err := c.post(ctx, url, payload, &decoded); err != nil {
		return nil, fmt.Errorf("reduceRegion failed: %w", err)
	}

	value, ok := decoded.Result[band]
	if !ok || value == nil {
		return nil, nil
	}
	return value, nil
}

// MapTiles registers the image for tiled rendering and returns the
// {z}/{x}/{y} URL template serving its tiles. Only the map renderer
// dereferences composite handles this way.
func (c *Client) MapTiles(ctx context.Context, img *Image, vis VisParams) (string, error) {
	payload := map[string]interface{}{
		"expression": expressionGraph(img.expr),
		"visualizationOptions": map[string]interface{}{
			"ranges":        []map[string]float64{{"min": vis.Min, "max": vis.Max}},
			"paletteColors": vis.Palette,
		},
	}

	var decoded struct {
		Name string `json:"name"`
	}
	url := fmt.Sprintf("%s/projects/%s/maps", c.endpoint, c.project)
	if err := c.post(ctx, url, payload, &decoded); err != nil {
		return "", fmt.Errorf("map session failed: %w", err)
	}
	if decoded.Name == "" {
		return "", fmt.Errorf("map session failed: service returned no map name")
	}
	return fmt.Sprintf("%s/%s/tiles/{z}/{x}/{y}", c.endpoint, decoded.Name), nil
}

func (c *Client) post(ctx context.Context, url string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debugf("POST %s (%d bytes)", url, len(body))
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("service returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// expressionGraph wraps a single invocation in the one-node graph form the
// compute endpoints expect.
func expressionGraph(node map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"result": "0",
		"values": map[string]interface{}{"0": node},
	}
}
