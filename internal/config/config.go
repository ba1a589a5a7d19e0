// Package config handles meshtool configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/internal/preview"
	"github.com/Faultbox/meshkit/pkg/sdf"
)

// Config holds all meshtool settings.
type Config struct {
	Processing ProcessingConfig `yaml:"processing"`
	Join       JoinConfig       `yaml:"join"`
	SDF        SDFConfig        `yaml:"sdf"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ProcessingConfig holds per-mesh cleanup settings.
type ProcessingConfig struct {
	WeldDistance     float32 `yaml:"weld_distance"`    // 0 disables welding
	SmoothAngleDeg   float32 `yaml:"smooth_angle_deg"` // max angle blended by smoothing groups
	SmoothNormals    bool    `yaml:"smooth_normals"`
	GenerateTangents bool    `yaml:"generate_tangents"`
	Dedup            bool    `yaml:"dedup"`
}

// JoinConfig selects the optional streams of a joined mesh.
type JoinConfig struct {
	VertexColors bool `yaml:"vertex_colors"`
	Bones        bool `yaml:"bones"`
	UVs          bool `yaml:"uvs"`
}

// SDFConfig holds distance field bake settings.
type SDFConfig struct {
	Resolution [3]int  `yaml:"resolution"`
	Padding    float32 `yaml:"padding"` // fraction of the largest mesh extent
	Smooth     bool    `yaml:"smooth"`
	Fill       string  `yaml:"fill"` // ring, converge or none
	SliceAxis  int     `yaml:"slice_axis"`
}

// OutputConfig holds where results are written.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	Slices      bool   `yaml:"slices"`       // write a distance field slice preview
	SliceFormat string `yaml:"slice_format"` // webp or bmp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Processing: ProcessingConfig{
			WeldDistance:     0.0001,
			SmoothAngleDeg:   60,
			SmoothNormals:    true,
			GenerateTangents: true,
			Dedup:            true,
		},
		Join: JoinConfig{
			VertexColors: false,
			Bones:        false,
			UVs:          true,
		},
		SDF: SDFConfig{
			Resolution: [3]int{64, 64, 64},
			Padding:    0.05,
			Smooth:     true,
			Fill:       "ring",
			SliceAxis:  2,
		},
		Output: OutputConfig{
			Dir:         ".",
			Slices:      false,
			SliceFormat: "webp",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// FillMode returns the parsed fill mode.
func (c SDFConfig) FillMode() (sdf.FillMode, error) {
	return sdf.ParseFillMode(c.Fill)
}

// Validate reports every invalid setting in c.
func (c *Config) Validate() error {
	var errs []error
	if c.Processing.WeldDistance < 0 {
		errs = append(errs, fmt.Errorf("processing.weld_distance must not be negative, got %g", c.Processing.WeldDistance))
	}
	if a := c.Processing.SmoothAngleDeg; a < 0 || a > 180 {
		errs = append(errs, fmt.Errorf("processing.smooth_angle_deg must be within [0, 180], got %g", a))
	}
	for axis, n := range c.SDF.Resolution {
		if n < 2 {
			errs = append(errs, fmt.Errorf("sdf.resolution[%d] must be at least 2, got %d", axis, n))
		}
	}
	if c.SDF.Padding < 0 {
		errs = append(errs, fmt.Errorf("sdf.padding must not be negative, got %g", c.SDF.Padding))
	}
	if _, err := c.SDF.FillMode(); err != nil {
		errs = append(errs, err)
	}
	if c.SDF.SliceAxis < 0 || c.SDF.SliceAxis > 2 {
		errs = append(errs, fmt.Errorf("sdf.slice_axis must be 0, 1 or 2, got %d", c.SDF.SliceAxis))
	}
	if _, err := preview.ParseFormat(c.Output.SliceFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
