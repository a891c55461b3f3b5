// Command pattern-plot renders the uniform and foveated sampling patterns
// for the calibrated depth geometry as PNG scatter plots and prints their
// density statistics.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pointcloud.recorder/internal/config"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/geometry"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/sampling"
)

var (
	configPath = flag.String("config", "", "Path to a recorder JSON config (defaults are used when empty)")
	outDir     = flag.String("out", ".", "Directory to write the PNG plots to")
	index      = flag.Int("index", 0, "Pattern index to plot")
	inner      = flag.Float64("inner", 0.5, "Normalised ellipse radius bounding the inner band")
	outer      = flag.Float64("outer", 1.0, "Normalised ellipse radius bounding the outer band")
)

func main() {
	flag.Parse()

	cfg := config.EmptyRecorderConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadRecorderConfig(*configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	m, err := sampling.NewManager(sampling.Config{
		Width:  cfg.GetDepthWidth(),
		Height: cfg.GetDepthHeight(),
		FOV: geometry.FOV{
			Left:  cfg.GetFOVLeft(),
			Right: cfg.GetFOVRight(),
			Up:    cfg.GetFOVUp(),
			Down:  cfg.GetFOVDown(),
		},
		ConeAngle:     cfg.GetConeAngle(),
		PatternCount:  cfg.GetPatternCount(),
		TargetSamples: cfg.GetTargetSamples(),
	})
	if err != nil {
		log.Fatalf("build patterns: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}
	for _, kind := range []sampling.Kind{sampling.Uniform, sampling.Foveated} {
		path, st, err := plotPattern(m, kind, *index, *inner, *outer, *outDir)
		if err != nil {
			log.Fatalf("plot %s: %v", kind, err)
		}
		fmt.Printf("%-8s samples=%4d inner=%4d (nn %.2f px) outer=%4d (nn %.2f px) radius=%.2f±%.2f -> %s\n",
			kind, st.Count, st.InnerCount, st.InnerMeanNN, st.OuterCount, st.OuterMeanNN,
			st.MeanRadius, st.StdDevRadius, path)
	}
}

// plotPattern writes pattern i of kind as <kind>_<i>.png in dir, with the
// foveation ellipse overlaid.
func plotPattern(m *sampling.Manager, kind sampling.Kind, i int, inner, outer float64, dir string) (string, sampling.Stats, error) {
	p, err := m.Pattern(kind, i)
	if err != nil {
		return "", sampling.Stats{}, err
	}
	st := m.PatternStats(p, inner, outer)
	w, h := m.Size()

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("%s pattern %d (%d samples)", kind, i, len(p))
	pl.X.Label.Text = "u (px)"
	pl.Y.Label.Text = "v (px)"
	pl.X.Min, pl.X.Max = 0, float64(w)
	pl.Y.Min, pl.Y.Max = 0, float64(h)

	pts := make(plotter.XYs, len(p))
	for j, idx := range p {
		// Rows grow downwards in the image.
		pts[j] = plotter.XY{X: float64(idx%w) + 0.5, Y: float64(h) - float64(idx/w) - 0.5}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return "", st, err
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	pl.Add(scatter)

	cx, cy, rx, ry := m.Ellipse()
	for _, r := range []float64{inner, outer} {
		ring := make(plotter.XYs, 0, 129)
		for k := 0; k <= 128; k++ {
			a := 2 * math.Pi * float64(k) / 128
			ring = append(ring, plotter.XY{X: cx + r*rx*math.Cos(a), Y: float64(h) - (cy + r*ry*math.Sin(a))})
		}
		line, err := plotter.NewLine(ring)
		if err != nil {
			return "", st, err
		}
		line.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
		line.Width = vg.Points(1)
		pl.Add(line)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%d.png", kind, i))
	if err := pl.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return "", st, fmt.Errorf("save %s: %w", path, err)
	}
	return path, st, nil
}
