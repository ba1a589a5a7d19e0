package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagLog        = flag.String("log", "", "Also write logs to this file")
	flagOut        = flag.String("out", "", "Output directory")
	flagWeld       = flag.Float64("weld", -1, "Weld distance (0 disables)")
	flagAngle      = flag.Float64("angle", -1, "Smoothing group angle in degrees")
	flagResolution = flag.String("res", "", "SDF resolution: N or X,Y,Z")
	flagFill       = flag.String("fill", "", "SDF fill mode: ring, converge or none")
	flagSlices     = flag.Bool("slices", false, "Write an SDF slice preview")
	flagFormat     = flag.String("format", "", "SDF slice image format: webp or bmp")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments, starting with the command name.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via -config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLog != "" {
		cfg.Logging.LogFile = *flagLog
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagWeld >= 0 {
		cfg.Processing.WeldDistance = float32(*flagWeld)
	}
	if *flagAngle >= 0 {
		cfg.Processing.SmoothAngleDeg = float32(*flagAngle)
	}
	if *flagResolution != "" {
		res, err := parseResolution(*flagResolution)
		if err != nil {
			return err
		}
		cfg.SDF.Resolution = res
	}
	if *flagFill != "" {
		cfg.SDF.Fill = *flagFill
	}
	if *flagSlices {
		cfg.Output.Slices = true
	}
	if *flagFormat != "" {
		cfg.Output.SliceFormat = *flagFormat
	}
	return nil
}

// parseResolution accepts "N" for a cube grid or "X,Y,Z".
func parseResolution(s string) ([3]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 1 && len(parts) != 3 {
		return [3]int{}, fmt.Errorf("resolution %q: want N or X,Y,Z", s)
	}
	var res [3]int
	for i := range res {
		p := parts[0]
		if len(parts) == 3 {
			p = parts[i]
		}
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return [3]int{}, fmt.Errorf("resolution %q: %w", s, err)
		}
		res[i] = n
	}
	return res, nil
}
