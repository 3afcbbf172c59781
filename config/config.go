// Package config loads the viewer configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type Camera struct {
	// Damping is the per-frame interpolation factor toward goal values.
	Damping float64 `yaml:"damping"`
	// MinDistanceFactor scales the model radius into the closest zoom distance.
	MinDistanceFactor float64 `yaml:"min_distance_factor"`
}

type Points struct {
	// SizeScale multiplies decoded splat sizes. Matches the decoder default.
	SizeScale float64 `yaml:"size_scale"`
	// BaseSizeFactor scales the bounding radius into the base world-space
	// point radius.
	BaseSizeFactor float64 `yaml:"base_size_factor"`
	// MaxPixelRatio caps the device pixel ratio used for the drawing buffer.
	MaxPixelRatio float64 `yaml:"max_pixel_ratio"`
}

type Hud struct {
	Enabled  bool   `yaml:"enabled"`
	FontPath string `yaml:"font_path"`
}

type Config struct {
	Window Window `yaml:"window"`
	Camera Camera `yaml:"camera"`
	Points Points `yaml:"points"`
	Hud    Hud    `yaml:"hud"`
}

func Default() Config {
	return Config{
		Window: Window{
			Width:  1280,
			Height: 800,
			Title:  "splatview",
		},
		Camera: Camera{
			Damping:           0.1,
			MinDistanceFactor: 0.2,
		},
		Points: Points{
			SizeScale:      50,
			BaseSizeFactor: 0.02,
			MaxPixelRatio:  2,
		},
		Hud: Hud{
			Enabled: true,
		},
	}
}

// Load reads a config file and overlays it onto the defaults. An empty path
// returns the defaults unchanged. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Camera.Damping <= 0 || c.Camera.Damping > 1 {
		return fmt.Errorf("camera damping must be in (0, 1], got %g", c.Camera.Damping)
	}
	if c.Points.SizeScale <= 0 {
		return fmt.Errorf("point size scale must be positive, got %g", c.Points.SizeScale)
	}
	if c.Points.MaxPixelRatio < 1 {
		return fmt.Errorf("max pixel ratio must be at least 1, got %g", c.Points.MaxPixelRatio)
	}
	return nil
}
