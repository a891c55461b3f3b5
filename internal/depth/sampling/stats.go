package sampling

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stats summarises how densely a pattern covers the inside and the outside
// of its sampling ellipse.
type Stats struct {
	Count int `json:"count"`

	InnerCount int `json:"inner_count"`
	OuterCount int `json:"outer_count"`

	// Mean nearest-neighbour pixel distance among samples of the same band.
	// NaN when a band holds fewer than two samples.
	InnerMeanNN float64 `json:"inner_mean_nn"`
	OuterMeanNN float64 `json:"outer_mean_nn"`

	MeanRadius   float64 `json:"mean_radius"`
	StdDevRadius float64 `json:"stddev_radius"`
}

// PatternStats measures p. Radii are normalised ellipse radii: samples with
// radius below inner fall in the inner band, above outer in the outer band.
func (m *Manager) PatternStats(p Pattern, inner, outer float64) Stats {
	w := m.cfg.Width
	radii := make([]float64, len(p))
	var inX, inY, outX, outY []float64
	for i, idx := range p {
		x, y := float64(idx%w)+0.5, float64(idx/w)+0.5
		r := math.Hypot((x-m.cx)/m.rx, (y-m.cy)/m.ry)
		radii[i] = r
		switch {
		case r < inner:
			inX, inY = append(inX, x), append(inY, y)
		case r > outer:
			outX, outY = append(outX, x), append(outY, y)
		}
	}

	s := Stats{
		Count:       len(p),
		InnerCount:  len(inX),
		OuterCount:  len(outX),
		InnerMeanNN: meanNearestNeighbour(inX, inY),
		OuterMeanNN: meanNearestNeighbour(outX, outY),
	}
	if len(radii) > 0 {
		s.MeanRadius, s.StdDevRadius = stat.MeanStdDev(radii, nil)
	}
	return s
}

func meanNearestNeighbour(xs, ys []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	nn := make([]float64, len(xs))
	for i := range xs {
		best := math.Inf(1)
		for j := range xs {
			if i == j {
				continue
			}
			if d := math.Hypot(xs[i]-xs[j], ys[i]-ys[j]); d < best {
				best = d
			}
		}
		nn[i] = best
	}
	return stat.Mean(nn, nil)
}
