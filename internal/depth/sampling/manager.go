package sampling

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/geometry"
)

// Kind selects the spacing rule of a pattern.
type Kind int

const (
	// Uniform patterns use a constant minimum spacing.
	Uniform Kind = iota
	// Foveated patterns space samples further apart towards the periphery.
	Foveated
)

func (k Kind) String() string {
	switch k {
	case Uniform:
		return "uniform"
	case Foveated:
		return "foveated"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps "uniform" or "foveated" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "uniform":
		return Uniform, nil
	case "foveated":
		return Foveated, nil
	}
	return 0, fmt.Errorf("unknown pattern kind %q", s)
}

// Pattern is an ordered list of row-major pixel indices (y*width+x).
type Pattern []int

// Config configures a Manager. Zero ConeAngle, PatternCount and
// TargetSamples take their defaults.
type Config struct {
	Width, Height int
	FOV           geometry.FOV

	ConeAngle     float64 // radians, full cone; default 30 degrees
	PatternCount  int     // patterns of each kind; default 10
	TargetSamples int     // samples per pattern; default 250
}

// Manager owns a fixed set of uniform and foveated patterns.
type Manager struct {
	cfg Config

	fx, fy float64
	cx, cy float64
	rx, ry float64

	uniform  []Pattern
	foveated []Pattern

	mu           sync.Mutex
	nextUniform  int
	nextFoveated int
}

// NewManager derives the pixel-space optical centre from the FOV and
// generates every pattern. Pattern i of each kind is seeded with i.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid pattern size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.ConeAngle == 0 {
		cfg.ConeAngle = 30 * math.Pi / 180
	}
	if cfg.PatternCount == 0 {
		cfg.PatternCount = 10
	}
	if cfg.TargetSamples == 0 {
		cfg.TargetSamples = 250
	}
	if cfg.PatternCount < 0 || cfg.TargetSamples < 0 {
		return nil, fmt.Errorf("pattern count and target samples must be positive")
	}

	tl, tr := math.Tan(cfg.FOV.Left), math.Tan(cfg.FOV.Right)
	tu, td := math.Tan(cfg.FOV.Up), math.Tan(cfg.FOV.Down)
	if tr <= tl || tu <= td {
		return nil, fmt.Errorf("degenerate field of view %+v", cfg.FOV)
	}

	m := &Manager{cfg: cfg}
	m.fx = float64(cfg.Width) / (tr - tl)
	m.fy = float64(cfg.Height) / (tu - td)
	m.cx = -m.fx * tl
	m.cy = float64(cfg.Height) + m.fy*td
	half := math.Tan(cfg.ConeAngle / 2)
	m.rx = m.fx * half
	m.ry = m.fy * half

	m.uniform = make([]Pattern, cfg.PatternCount)
	m.foveated = make([]Pattern, cfg.PatternCount)
	for i := 0; i < cfg.PatternCount; i++ {
		m.uniform[i] = m.generate(int64(i), Uniform)
		m.foveated[i] = m.generate(int64(i), Foveated)
	}
	return m, nil
}

// generate throws darts uniformly over the sampling ellipse and keeps those
// far enough from every accepted sample. The attempt budget restarts after
// each acceptance, so a pattern only ends short when target*100 darts in a
// row miss.
func (m *Manager) generate(seed int64, kind Kind) Pattern {
	rng := rand.New(rand.NewSource(seed))
	target := m.cfg.TargetSamples

	area := math.Pi * m.rx * m.ry
	baseRadius := math.Sqrt(area/float64(target)) * 0.8

	xs := make([]float64, 0, target)
	ys := make([]float64, 0, target)
	out := make(Pattern, 0, target)

	maxAttempts := target * 100
	for attempts := 0; len(out) < target && attempts < maxAttempts; {
		attempts++

		r := math.Sqrt(rng.Float64())
		theta := rng.Float64() * 2 * math.Pi
		x := m.cx + r*m.rx*math.Cos(theta)
		y := m.cy + r*m.ry*math.Sin(theta)
		if x < 0 || y < 0 || x >= float64(m.cfg.Width) || y >= float64(m.cfg.Height) {
			continue
		}

		required := baseRadius
		if kind == Foveated {
			required = baseRadius * (0.4 + 1.2*r)
		}
		required *= required

		ok := true
		for i := range xs {
			dx, dy := x-xs[i], y-ys[i]
			if dx*dx+dy*dy < required {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		xs = append(xs, x)
		ys = append(ys, y)
		out = append(out, int(y)*m.cfg.Width+int(x))
		attempts = 0
	}
	return out
}

func (m *Manager) next(kind Kind) Pattern {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind == Uniform {
		p := m.uniform[m.nextUniform]
		m.nextUniform = (m.nextUniform + 1) % len(m.uniform)
		return p
	}
	p := m.foveated[m.nextFoveated]
	m.nextFoveated = (m.nextFoveated + 1) % len(m.foveated)
	return p
}

// NextUniformPattern returns the next uniform pattern in round-robin order.
// The returned slice is shared and must not be modified.
func (m *Manager) NextUniformPattern() Pattern { return m.next(Uniform) }

// NextFoveatedPattern returns the next foveated pattern in round-robin order.
// The returned slice is shared and must not be modified.
func (m *Manager) NextFoveatedPattern() Pattern { return m.next(Foveated) }

// Pattern returns pattern i of the given kind without moving the cursors.
func (m *Manager) Pattern(kind Kind, i int) (Pattern, error) {
	if i < 0 || i >= m.cfg.PatternCount {
		return nil, fmt.Errorf("pattern index %d out of range [0,%d)", i, m.cfg.PatternCount)
	}
	switch kind {
	case Uniform:
		return m.uniform[i], nil
	case Foveated:
		return m.foveated[i], nil
	}
	return nil, fmt.Errorf("unknown pattern kind %v", kind)
}

// PatternCount returns the number of patterns of each kind.
func (m *Manager) PatternCount() int { return m.cfg.PatternCount }

// Size returns the pixel grid the patterns index into.
func (m *Manager) Size() (width, height int) { return m.cfg.Width, m.cfg.Height }

// Ellipse returns the sampling ellipse centre and radii in pixels.
func (m *Manager) Ellipse() (cx, cy, rx, ry float64) { return m.cx, m.cy, m.rx, m.ry }
