package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return p
}

func TestEmptyRecorderConfig_Defaults(t *testing.T) {
	cfg := EmptyRecorderConfig()

	if cfg.GetDepthWidth() != 160 || cfg.GetDepthHeight() != 160 {
		t.Errorf("depth size = %dx%d, want 160x160", cfg.GetDepthWidth(), cfg.GetDepthHeight())
	}
	if cfg.GetFOVLeft() != DefaultFOVLeft || cfg.GetFOVDown() != DefaultFOVDown {
		t.Errorf("unexpected FOV defaults %f %f", cfg.GetFOVLeft(), cfg.GetFOVDown())
	}
	if cfg.GetCapacity() != 100000 {
		t.Errorf("GetCapacity() = %d, want 100000", cfg.GetCapacity())
	}
	if math.Abs(cfg.GetConeAngle()-math.Pi/6) > 1e-12 {
		t.Errorf("GetConeAngle() = %f, want pi/6", cfg.GetConeAngle())
	}
	if math.Abs(cfg.GetMinAngle()-10*math.Pi/180) > 1e-12 {
		t.Errorf("GetMinAngle() = %f", cfg.GetMinAngle())
	}
	if cfg.GetRenderInterval() != 16*time.Millisecond {
		t.Errorf("GetRenderInterval() = %s", cfg.GetRenderInterval())
	}
	if cfg.GetExportDir() != os.TempDir() {
		t.Errorf("GetExportDir() = %q, want temp dir", cfg.GetExportDir())
	}
	if cfg.GetCommandQueueSize() != 1 {
		t.Errorf("GetCommandQueueSize() = %d, want 1", cfg.GetCommandQueueSize())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty config should validate: %v", err)
	}
}

func TestLoadRecorderConfig_Partial(t *testing.T) {
	p := writeConfig(t, "partial.json", `{"capacity": 500, "render_interval": "50ms", "export_dir": "/tmp/clouds"}`)

	cfg, err := LoadRecorderConfig(p)
	if err != nil {
		t.Fatalf("LoadRecorderConfig: %v", err)
	}
	if cfg.GetCapacity() != 500 {
		t.Errorf("GetCapacity() = %d, want 500", cfg.GetCapacity())
	}
	if cfg.GetRenderInterval() != 50*time.Millisecond {
		t.Errorf("GetRenderInterval() = %s, want 50ms", cfg.GetRenderInterval())
	}
	if cfg.GetExportDir() != "/tmp/clouds" {
		t.Errorf("GetExportDir() = %q", cfg.GetExportDir())
	}
	if cfg.GetPatternCount() != 10 {
		t.Errorf("unset pattern_count should default, got %d", cfg.GetPatternCount())
	}
}

func TestLoadRecorderConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "cfg.yaml", `{}`, ".json extension"},
		{"bad json", "cfg.json", `{`, "parse"},
		{"negative capacity", "cfg.json", `{"capacity": -1}`, "capacity"},
		{"far before near", "cfg.json", `{"near": 5, "far": 1}`, "far"},
		{"fov inverted", "cfg.json", `{"fov_left": 1, "fov_right": -1}`, "fov_right"},
		{"confidence range", "cfg.json", `{"export_confidence": 1.5}`, "export_confidence"},
		{"bad interval", "cfg.json", `{"render_interval": "soon"}`, "render_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeConfig(t, tt.file, tt.body)
			_, err := LoadRecorderConfig(p)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadRecorderConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRecorderConfig_TooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.json")
	if err := os.WriteFile(p, make([]byte, 1<<20+1), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRecorderConfig(p); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	empty := EmptyRecorderConfig()

	if cfg.GetCapacity() != empty.GetCapacity() {
		t.Errorf("defaults file capacity %d != built-in %d", cfg.GetCapacity(), empty.GetCapacity())
	}
	if cfg.GetFOVRight() != empty.GetFOVRight() || cfg.GetFOVUp() != empty.GetFOVUp() {
		t.Error("defaults file FOV differs from built-in calibration")
	}
	if cfg.GetTargetSamples() != empty.GetTargetSamples() {
		t.Errorf("defaults file target_samples %d != %d", cfg.GetTargetSamples(), empty.GetTargetSamples())
	}
}

func TestValidate_Pointers(t *testing.T) {
	cfg := &RecorderConfig{
		PatternCount:   ptrInt(0),
		RenderInterval: ptrString("16ms"),
		MinDistance:    ptrFloat64(0.2),
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected pattern_count error")
	}
	cfg.PatternCount = ptrInt(4)
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
