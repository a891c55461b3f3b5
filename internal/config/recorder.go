// Package config loads the recorder's JSON configuration.
//
// Every field is optional. Get* accessors fall back to the calibrated
// defaults of the reference headset, so a partial file only needs to name
// the values it changes.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the canonical defaults file, relative to the repo root.
const DefaultConfigPath = "config/recorder.defaults.json"

// Calibrated constants of the reference depth sensor.
const (
	DefaultDepthWidth  = 160
	DefaultDepthHeight = 160
	DefaultFOVLeft     = -0.95099926
	DefaultFOVRight    = 0.6959626
	DefaultFOVUp       = 0.9175058
	DefaultFOVDown     = -0.9175058
)

// RecorderConfig is the root configuration document.
type RecorderConfig struct {
	// Calibration
	DepthWidth  *int     `json:"depth_width,omitempty"`
	DepthHeight *int     `json:"depth_height,omitempty"`
	FOVLeft     *float64 `json:"fov_left,omitempty"` // radians, tangent-space angle
	FOVRight    *float64 `json:"fov_right,omitempty"`
	FOVUp       *float64 `json:"fov_up,omitempty"`
	FOVDown     *float64 `json:"fov_down,omitempty"`
	Near        *float64 `json:"near,omitempty"`
	Far         *float64 `json:"far,omitempty"`

	// Sampling
	ConeAngleDegrees *float64 `json:"cone_angle_degrees,omitempty"`
	PatternCount     *int     `json:"pattern_count,omitempty"`
	TargetSamples    *int     `json:"target_samples,omitempty"`

	// Accumulation
	Capacity         *int     `json:"capacity,omitempty"`
	MinDistance      *float64 `json:"min_distance,omitempty"`
	MinAngleDegrees  *float64 `json:"min_angle_degrees,omitempty"`
	AcceptConfidence *float64 `json:"accept_confidence,omitempty"`

	// Export
	ExportConfidence *float64 `json:"export_confidence,omitempty"`
	ExportDir        *string  `json:"export_dir,omitempty"`

	// Runtime
	CommandQueueSize   *int     `json:"command_queue_size,omitempty"`
	RenderInterval     *string  `json:"render_interval,omitempty"` // duration string like "16ms"
	SyntheticFrameRate *float64 `json:"synthetic_frame_rate,omitempty"`
	MaxStreamClients   *int     `json:"max_stream_clients,omitempty"`
	LogLevel           *string  `json:"log_level,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyRecorderConfig returns a config with every field unset.
func EmptyRecorderConfig() *RecorderConfig {
	return &RecorderConfig{}
}

// LoadRecorderConfig reads and validates a JSON config file. The path must
// end in .json and the file must be at most 1MB.
func LoadRecorderConfig(path string) (*RecorderConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 << 20
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyRecorderConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath from the working directory
// or one of its parents. It panics when the file cannot be found, and is
// meant for tests.
func MustLoadDefaultConfig() *RecorderConfig {
	prefix := ""
	for i := 0; i < 6; i++ {
		if cfg, err := LoadRecorderConfig(prefix + DefaultConfigPath); err == nil {
			return cfg
		}
		prefix += "../"
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *RecorderConfig) Validate() error {
	positiveInts := []struct {
		name string
		v    *int
	}{
		{"depth_width", c.DepthWidth},
		{"depth_height", c.DepthHeight},
		{"pattern_count", c.PatternCount},
		{"target_samples", c.TargetSamples},
		{"capacity", c.Capacity},
		{"command_queue_size", c.CommandQueueSize},
		{"max_stream_clients", c.MaxStreamClients},
	}
	for _, f := range positiveInts {
		if f.v != nil && *f.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", f.name, *f.v)
		}
	}

	if c.Near != nil && *c.Near <= 0 {
		return fmt.Errorf("near must be positive, got %f", *c.Near)
	}
	if c.GetFar() <= c.GetNear() {
		return fmt.Errorf("far (%f) must be greater than near (%f)", c.GetFar(), c.GetNear())
	}
	if c.GetFOVRight() <= c.GetFOVLeft() {
		return fmt.Errorf("fov_right (%f) must be greater than fov_left (%f)", c.GetFOVRight(), c.GetFOVLeft())
	}
	if c.GetFOVUp() <= c.GetFOVDown() {
		return fmt.Errorf("fov_up (%f) must be greater than fov_down (%f)", c.GetFOVUp(), c.GetFOVDown())
	}
	if c.ConeAngleDegrees != nil && (*c.ConeAngleDegrees <= 0 || *c.ConeAngleDegrees >= 180) {
		return fmt.Errorf("cone_angle_degrees must be in (0, 180), got %f", *c.ConeAngleDegrees)
	}
	if c.MinDistance != nil && *c.MinDistance < 0 {
		return fmt.Errorf("min_distance must be non-negative, got %f", *c.MinDistance)
	}
	if c.MinAngleDegrees != nil && (*c.MinAngleDegrees < 0 || *c.MinAngleDegrees > 180) {
		return fmt.Errorf("min_angle_degrees must be in [0, 180], got %f", *c.MinAngleDegrees)
	}
	for name, v := range map[string]*float64{
		"accept_confidence": c.AcceptConfidence,
		"export_confidence": c.ExportConfidence,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}
	if c.RenderInterval != nil && *c.RenderInterval != "" {
		d, err := time.ParseDuration(*c.RenderInterval)
		if err != nil {
			return fmt.Errorf("invalid render_interval '%s': %w", *c.RenderInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("render_interval must be positive, got %s", d)
		}
	}
	if c.SyntheticFrameRate != nil && *c.SyntheticFrameRate <= 0 {
		return fmt.Errorf("synthetic_frame_rate must be positive, got %f", *c.SyntheticFrameRate)
	}
	return nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// GetDepthWidth returns the calibrated depth width in pixels.
func (c *RecorderConfig) GetDepthWidth() int { return intOr(c.DepthWidth, DefaultDepthWidth) }

// GetDepthHeight returns the calibrated depth height in pixels.
func (c *RecorderConfig) GetDepthHeight() int { return intOr(c.DepthHeight, DefaultDepthHeight) }

// GetFOVLeft returns the calibrated left FOV angle.
func (c *RecorderConfig) GetFOVLeft() float64 { return floatOr(c.FOVLeft, DefaultFOVLeft) }

// GetFOVRight returns the calibrated right FOV angle.
func (c *RecorderConfig) GetFOVRight() float64 { return floatOr(c.FOVRight, DefaultFOVRight) }

// GetFOVUp returns the calibrated up FOV angle.
func (c *RecorderConfig) GetFOVUp() float64 { return floatOr(c.FOVUp, DefaultFOVUp) }

// GetFOVDown returns the calibrated down FOV angle.
func (c *RecorderConfig) GetFOVDown() float64 { return floatOr(c.FOVDown, DefaultFOVDown) }

// GetNear returns the near clip plane distance.
func (c *RecorderConfig) GetNear() float64 { return floatOr(c.Near, 0.01) }

// GetFar returns the far clip plane distance.
func (c *RecorderConfig) GetFar() float64 { return floatOr(c.Far, 10) }

// GetConeAngle returns the sampling cone angle in radians.
func (c *RecorderConfig) GetConeAngle() float64 {
	return floatOr(c.ConeAngleDegrees, 30) * math.Pi / 180
}

// GetPatternCount returns how many patterns of each kind are generated.
func (c *RecorderConfig) GetPatternCount() int { return intOr(c.PatternCount, 10) }

// GetTargetSamples returns the requested samples per pattern.
func (c *RecorderConfig) GetTargetSamples() int { return intOr(c.TargetSamples, 250) }

// GetCapacity returns the ring buffer capacity in points.
func (c *RecorderConfig) GetCapacity() int { return intOr(c.Capacity, 100000) }

// GetMinDistance returns the motion gate translation threshold.
func (c *RecorderConfig) GetMinDistance() float64 { return floatOr(c.MinDistance, 0.10) }

// GetMinAngle returns the motion gate rotation threshold in radians.
func (c *RecorderConfig) GetMinAngle() float64 {
	return floatOr(c.MinAngleDegrees, 10) * math.Pi / 180
}

// GetAcceptConfidence returns the per-pixel acceptance threshold.
func (c *RecorderConfig) GetAcceptConfidence() float64 { return floatOr(c.AcceptConfidence, 0.5) }

// GetExportConfidence returns the export filter threshold.
func (c *RecorderConfig) GetExportConfidence() float64 { return floatOr(c.ExportConfidence, 0.5) }

// GetExportDir returns the export directory, the OS temp dir by default.
func (c *RecorderConfig) GetExportDir() string {
	if c.ExportDir == nil || *c.ExportDir == "" {
		return os.TempDir()
	}
	return *c.ExportDir
}

// GetCommandQueueSize returns the UI command queue size.
func (c *RecorderConfig) GetCommandQueueSize() int { return intOr(c.CommandQueueSize, 1) }

// GetRenderInterval returns how often the stream publisher drains dirty ranges.
func (c *RecorderConfig) GetRenderInterval() time.Duration {
	if c.RenderInterval == nil || *c.RenderInterval == "" {
		return 16 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.RenderInterval)
	if err != nil || d <= 0 {
		return 16 * time.Millisecond
	}
	return d
}

// GetSyntheticFrameRate returns the synthetic source rate in Hz.
func (c *RecorderConfig) GetSyntheticFrameRate() float64 {
	return floatOr(c.SyntheticFrameRate, 30)
}

// GetMaxStreamClients returns the stream client limit.
func (c *RecorderConfig) GetMaxStreamClients() int { return intOr(c.MaxStreamClients, 8) }

// GetLogLevel returns the log level name.
func (c *RecorderConfig) GetLogLevel() string {
	if c.LogLevel == nil || *c.LogLevel == "" {
		return "info"
	}
	return *c.LogLevel
}
