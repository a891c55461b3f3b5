package monitor

import (
	"bytes"
	"fmt"
	"image/png"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/render"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/sampling"
	"github.com/banshee-data/pointcloud.recorder/internal/httputil"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// handleCloudScatter renders a top-down (X/Z) scatter of the accumulated
// points coloured by height.
// Query params:
//   - max_points (optional; default 8000) to reduce payload size
func (ws *WebServer) handleCloudScatter(w http.ResponseWriter, r *http.Request) {
	maxPoints := 8000
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}

	pts := ws.session.Buffer().Snapshot().Ordered()
	if len(pts) == 0 {
		httputil.NotFound(w, "no points accumulated")
		return
	}

	stride := 1
	if len(pts) > maxPoints {
		stride = int(math.Ceil(float64(len(pts)) / float64(maxPoints)))
	}

	data := make([]opts.ScatterData, 0, len(pts)/stride+1)
	maxAbs := 0.0
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := 0; i < len(pts); i += stride {
		p := pts[i]
		x, y, z := float64(p.X), float64(p.Y), float64(p.Z)
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(x), math.Abs(z)))
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		data = append(data, opts.ScatterData{Value: []interface{}{x, z, y}})
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1
	}
	if maxY <= minY {
		maxY = minY + 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Point cloud (top down)", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Accumulated point cloud", Subtitle: fmt.Sprintf("session=%s points=%d stride=%d", ws.session.ID(), len(data), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Z (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(minY),
			Max:        float32(maxY),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("points", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handlePatternScatter renders one sampling pattern in pixel space with the
// foveation ellipse statistics in the subtitle.
// Query params:
//   - kind (optional; uniform or foveated, default foveated)
//   - index (optional; default 0)
func (ws *WebServer) handlePatternScatter(w http.ResponseWriter, r *http.Request) {
	kind := sampling.Foveated
	if k := r.URL.Query().Get("kind"); k != "" {
		parsed, err := sampling.ParseKind(k)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		kind = parsed
	}
	index := 0
	if s := r.URL.Query().Get("index"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			httputil.BadRequest(w, "index must be an integer")
			return
		}
		index = v
	}

	m := ws.session.Sampler()
	p, err := m.Pattern(kind, index)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	width, height := m.Size()

	data := make([]opts.ScatterData, 0, len(p))
	for _, idx := range p {
		// Flip rows so the chart reads like the image.
		data = append(data, opts.ScatterData{Value: []interface{}{idx % width, height - 1 - idx/width}})
	}

	st := m.PatternStats(p, 0.5, 1.0)
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Sampling pattern", Theme: "dark", Width: "800px", Height: "800px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s pattern %d", kind, index),
			Subtitle: fmt.Sprintf("samples=%d inner=%d outer=%d innerNN=%.2f outerNN=%.2f", st.Count, st.InnerCount, st.OuterCount, st.InnerMeanNN, st.OuterMeanNN),
		}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: width, Name: "u (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: height, Name: "v (px)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries(kind.String(), data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleDepthPreview serves the latest depth map as a PNG scaled by the
// running maximum depth.
func (ws *WebServer) handleDepthPreview(w http.ResponseWriter, r *http.Request) {
	stats, ok := ws.session.Mailbox().Latest()
	if !ok || stats.Depth == nil {
		httputil.NotFound(w, "no depth frame processed yet")
		return
	}
	img := render.DepthPreview(stats.Depth, stats.MaxDepth)
	if img == nil {
		httputil.NotFound(w, "latest depth frame is malformed")
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to encode png: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}
