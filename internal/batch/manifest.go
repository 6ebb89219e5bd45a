package batch

import (
	"encoding/json"
	"os"
)

// Manifest is the summary written next to the exported maps.
type Manifest struct {
	Divisor  float64  `json:"divisor"`
	BitDepth int      `json:"bit_depth"`
	FlipY    bool     `json:"flip_y"`
	Masked   bool     `json:"masked"`
	Maps     []Result `json:"maps"`
}

// NewManifest records the decode settings alongside the results.
func NewManifest(cfg Config, results []Result) Manifest {
	return Manifest{
		Divisor:  cfg.Decode.Divisor,
		BitDepth: cfg.Decode.BitDepth,
		FlipY:    cfg.Decode.FlipY,
		Masked:   cfg.Decode.DebugMask,
		Maps:     results,
	}
}

// WriteManifest writes manifest.json.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
