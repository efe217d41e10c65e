package config

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config is the merged parameter set for one run: the base config file plus
// the region file, where region keys override base keys with the same name.
// It is built once at startup and never mutated afterwards.
type Config struct {
	ProjectName string `toml:"project_name" validate:"required"`
	DatasetName string `toml:"dataset_name" validate:"required"`
	Band        string `toml:"band" validate:"required"`
	Years       []int  `toml:"years" validate:"required,min=1"`

	// StartDate and EndDate are month-day templates ("01-01"); the query
	// driver prefixes them with each year to build a half-open interval.
	StartDate string `toml:"start_date" validate:"required"`
	EndDate   string `toml:"end_date" validate:"required"`

	Threshold  float64 `toml:"threshold"`
	Resolution float64 `toml:"resolution" validate:"required,gt=0"`
	MaxPixels  int64   `toml:"max_pixels" validate:"required,gt=0"`

	RegionType   string `toml:"region_type" validate:"required,oneof=global point"`
	RegionConfig string `toml:"region_config"`

	MapTiles     string `toml:"map_tiles" validate:"required"`
	MapFileName  string `toml:"map_file_name" validate:"required"`
	MapFilePath  string `toml:"map_file_path" validate:"required"`
	ExperimentID string `toml:"experiment_id" validate:"required"`
	PicName      string `toml:"pic_name" validate:"required"`
	LogLevel     string `toml:"log_level"`

	// Point/radius region.
	Center []float64 `toml:"center"`
	Radius float64   `toml:"radius"`

	// Global region.
	BBox             []float64 `toml:"bbox"`
	GridSize         float64   `toml:"grid_size"`
	SamplePoints     int       `toml:"sample_points"`
	SampleRegionSize float64   `toml:"sample_region_size"`
	SampleSeed       int64     `toml:"sample_seed"`
}

func (c *Config) Global() bool {
	return c.RegionType == "global"
}

// Load reads <root>/config/config.toml, then the region file it points at,
// and validates the merged result. In global mode the region file is always
// region_global.toml; otherwise region_config names it, resolved relative to
// the config directory when not absolute.
func Load(rootPath string) (*Config, error) {
	cfg := &Config{
		LogLevel:         "info",
		GridSize:         10,
		SamplePoints:     10,
		SampleRegionSize: 20,
		SampleSeed:       42,
	}

	basePath := filepath.Join(rootPath, "config", "config.toml")
	if _, err := toml.DecodeFile(basePath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load base config %s: %w", basePath, err)
	}

	regionFile := cfg.RegionConfig
	if cfg.Global() {
		regionFile = "region_global.toml"
	}
	if regionFile == "" {
		return nil, fmt.Errorf("region_config is not set in %s", basePath)
	}
	if !filepath.IsAbs(regionFile) {
		regionFile = filepath.Join(rootPath, "config", regionFile)
	}
	// Decoding into the same struct makes region keys override base keys
	// while leaving keys absent from the region file untouched.
	if _, err := toml.DecodeFile(regionFile, cfg); err != nil {
		return nil, fmt.Errorf("failed to load region config %s: %w", regionFile, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Global() {
		if len(c.BBox) != 4 {
			return fmt.Errorf("global region requires a 4-element bbox, got %d elements", len(c.BBox))
		}
		w, s, e, n := c.BBox[0], c.BBox[1], c.BBox[2], c.BBox[3]
		if w < -180 || e > 180 || s < -90 || n > 90 || w >= e || s >= n {
			return fmt.Errorf("bbox [%v, %v, %v, %v] is outside [-180,180]x[-90,90] or degenerate", w, s, e, n)
		}
		if c.SamplePoints < 1 {
			return fmt.Errorf("sample_points must be at least 1, got %d", c.SamplePoints)
		}
		// A sample box spans size degrees of latitude, so it only fits
		// between the poles up to 90.
		if c.SampleRegionSize <= 0 || c.SampleRegionSize > 90 {
			return fmt.Errorf("sample_region_size must be in (0, 90], got %v", c.SampleRegionSize)
		}
		if c.GridSize <= 0 {
			return fmt.Errorf("grid_size must be positive, got %v", c.GridSize)
		}
		return nil
	}

	if len(c.Center) != 2 {
		return fmt.Errorf("point region requires a 2-element center [lon, lat], got %d elements", len(c.Center))
	}
	if lon, lat := c.Center[0], c.Center[1]; lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return fmt.Errorf("center [%v, %v] is outside [-180,180]x[-90,90]", lon, lat)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("radius must be positive, got %v", c.Radius)
	}
	return nil
}
