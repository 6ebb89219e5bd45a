package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"mirror-warp/internal/compensation"
	"mirror-warp/internal/export"
	"mirror-warp/internal/warpmap"
)

// DefaultMapFile is the encoded warp map looked up inside the data directory.
const DefaultMapFile = "warp_map.png"

// Config holds paths, decode settings and per-frame shader settings.
type Config struct {
	// Paths
	DataDir    string `json:"data_dir"`
	MapFile    string `json:"map_file"`
	ExportPath string `json:"export_path"`
	OutputDir  string `json:"output_dir"`

	// Decode settings
	MapDiv      float64 `json:"map_div"`
	BitDepth    int     `json:"bit_depth"`
	FlipTexture *bool   `json:"flip_texture"`
	DebugExport bool    `json:"debug_export"`
	PreviewSize int     `json:"preview_size"`
	Workers     int     `json:"workers"`

	// Frame settings
	TabletScale   [2]float64 `json:"tablet_screen_scale"`
	Power         float64    `json:"power"`
	Alpha         float64    `json:"alpha"`
	RotationAxis  *int       `json:"rotation_axis"`
	RotationSpeed float64    `json:"rotation_speed"` // degrees per second
	FPS           int        `json:"fps"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	DataDir   string
	OutputDir string
	MapDiv    float64
	Workers   int
	Debug     bool
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.DataDir != "" {
		c.DataDir = flags.DataDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.MapDiv != 0 {
		c.MapDiv = flags.MapDiv
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Debug {
		c.DebugExport = true
	}

	if c.DataDir == "" {
		c.DataDir = detectDataDir()
	}

	if c.DataDir != "" {
		c.MapFile = resolvePath(c.DataDir, c.MapFile, DefaultMapFile)
		if c.ExportPath == "" {
			c.ExportPath = export.DefaultPath(c.DataDir)
		} else if !filepath.IsAbs(c.ExportPath) {
			c.ExportPath = filepath.Join(c.DataDir, c.ExportPath)
		}
		c.OutputDir = resolvePath(c.DataDir, c.OutputDir, filepath.Join("..", "warp-decoded"))
	}

	// Decode defaults
	if c.MapDiv == 0 {
		c.MapDiv = warpmap.DefaultDivisor
	}
	if c.BitDepth <= 0 {
		c.BitDepth = warpmap.DefaultBitDepth
	}
	if c.FlipTexture == nil {
		flip := true
		c.FlipTexture = &flip
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}

	// Frame defaults
	if c.TabletScale == ([2]float64{}) {
		c.TabletScale = [2]float64{compensation.DefaultAspect.W, compensation.DefaultAspect.H}
	}
	if c.Power == 0 {
		c.Power = compensation.DefaultParams.Power
	}
	if c.Alpha == 0 {
		c.Alpha = compensation.DefaultParams.Alpha
	}
	if c.RotationAxis == nil {
		axis := 1
		c.RotationAxis = &axis
	}
	if c.FPS <= 0 {
		c.FPS = 60
	}
}

// DecodeOptions returns the decoder settings. debug selects the masked
// inspection variant.
func (c *Config) DecodeOptions(debug bool) warpmap.Options {
	flip := true
	if c.FlipTexture != nil {
		flip = *c.FlipTexture
	}
	return warpmap.Options{
		Divisor:   c.MapDiv,
		FlipY:     flip,
		BitDepth:  c.BitDepth,
		DebugMask: debug,
	}
}

// Aspect returns the tablet screen aspect.
func (c *Config) Aspect() compensation.Aspect {
	return compensation.Aspect{W: c.TabletScale[0], H: c.TabletScale[1]}
}

// Params returns the brightness parameters forwarded to the shader.
func (c *Config) Params() compensation.Params {
	return compensation.Params{Power: c.Power, Alpha: c.Alpha}
}

func resolvePath(base, p, def string) string {
	if p == "" {
		return filepath.Join(base, def)
	}
	if !filepath.IsAbs(p) {
		return filepath.Join(base, p)
	}
	return p
}

func detectDataDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir)} {
			if d := dataDirIn(base); d != "" {
				return d
			}
		}
	}

	// Try current working directory, then its parent
	cwd, _ := os.Getwd()
	if d := dataDirIn(cwd); d != "" {
		return d
	}
	return dataDirIn(filepath.Dir(cwd))
}

// dataDirIn returns base/Data when it holds the default map.
func dataDirIn(base string) string {
	d := filepath.Join(base, "Data")
	if _, err := os.Stat(filepath.Join(d, DefaultMapFile)); err == nil {
		return d
	}
	return ""
}
