package source

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/geometry"
	"github.com/banshee-data/pointcloud.recorder/internal/monitoring"
	"github.com/banshee-data/pointcloud.recorder/internal/timeutil"
)

// SyntheticConfig describes a camera orbiting inside an axis-aligned box
// room centred on the origin.
type SyntheticConfig struct {
	Width, Height int
	FOV           geometry.FOV
	Near          float64

	// Room holds the half-extents of the room along each axis.
	Room        r3.Vec
	OrbitRadius float64
	OrbitPeriod time.Duration
	FrameRate   float64

	// InvalidFraction is the share of pixels reported with depth 0.
	InvalidFraction float64
	Seed            int64

	Clock timeutil.Clock
}

// DefaultSyntheticConfig returns a 3x2x3 metre half-extent room scanned
// with the given sensor geometry.
func DefaultSyntheticConfig(width, height int, fov geometry.FOV) SyntheticConfig {
	return SyntheticConfig{
		Width:       width,
		Height:      height,
		FOV:         fov,
		Near:        0.01,
		Room:        r3.Vec{X: 3, Y: 1.5, Z: 3},
		OrbitRadius: 1,
		OrbitPeriod: 20 * time.Second,
		FrameRate:   30,
	}
}

// Synthetic renders depth frames of a box room by casting one ray per
// pixel through the calibrated intrinsics.
type Synthetic struct {
	cfg   SyntheticConfig
	intr  geometry.Intrinsics
	rng   *rand.Rand
	clock timeutil.Clock

	sent    atomic.Int64
	dropped atomic.Int64
}

// NewSynthetic validates cfg and returns a source for it.
func NewSynthetic(cfg SyntheticConfig) (*Synthetic, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("synthetic source needs a positive frame size")
	}
	if cfg.FOV.Right <= cfg.FOV.Left || cfg.FOV.Up <= cfg.FOV.Down {
		return nil, errors.New("synthetic source needs a non-degenerate field of view")
	}
	if cfg.Room.X <= 0 || cfg.Room.Y <= 0 || cfg.Room.Z <= 0 {
		return nil, errors.New("synthetic room extents must be positive")
	}
	if cfg.OrbitRadius < 0 || cfg.OrbitRadius >= math.Min(cfg.Room.X, cfg.Room.Z) {
		return nil, errors.New("synthetic orbit must stay inside the room")
	}
	if cfg.Near <= 0 {
		cfg.Near = 0.01
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 30
	}
	if cfg.OrbitPeriod <= 0 {
		cfg.OrbitPeriod = 20 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	return &Synthetic{
		cfg:   cfg,
		intr:  geometry.IntrinsicsFromFOV(cfg.FOV, cfg.Width, cfg.Height, cfg.Near),
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		clock: cfg.Clock,
	}, nil
}

// PoseAt returns the camera pose after elapsed time on the orbit. The camera
// yaws with the orbit so it sweeps every wall once per period.
func (s *Synthetic) PoseAt(elapsed time.Duration) geometry.Pose {
	theta := 2 * math.Pi * elapsed.Seconds() / s.cfg.OrbitPeriod.Seconds()
	return geometry.Pose{
		Position:    r3.Vec{X: s.cfg.OrbitRadius * math.Cos(theta), Z: s.cfg.OrbitRadius * math.Sin(theta)},
		Orientation: r3.NewRotation(theta, r3.Vec{Y: 1}),
	}
}

// FrameAt renders the frame seen after elapsed time on the orbit.
func (s *Synthetic) FrameAt(elapsed time.Duration) Frame {
	pose := s.PoseAt(elapsed)
	w, h := s.cfg.Width, s.cfg.Height
	df := &geometry.DepthFrame{
		Width:      w,
		Height:     h,
		Depth:      make([]float32, w*h),
		Confidence: make([]float32, w*h),
	}

	invalid := 0
	for v := 0; v < h; v++ {
		for u := 0; u < w; u++ {
			i := v*w + u
			if s.cfg.InvalidFraction > 0 && s.rng.Float64() < s.cfg.InvalidFraction {
				invalid++
				continue
			}
			dir := pose.Orientation.Rotate(s.intr.Ray(float64(u), float64(v)))
			t, normal := s.castRay(pose.Position, dir)
			if t <= 0 {
				invalid++
				continue
			}
			df.Depth[i] = float32(t)
			df.Confidence[i] = float32(confidenceFor(dir, normal, t))
		}
	}
	debugf("frame at %s: pose=%v invalid=%d", elapsed, pose.Position, invalid)

	return Frame{
		Depth:     df,
		Viewpoint: geometry.Viewpoint{Pose: pose, FOV: s.cfg.FOV},
	}
}

// castRay intersects origin + t*dir with the room walls. It returns the
// smallest positive t and the normal of the wall that was hit.
func (s *Synthetic) castRay(origin, dir r3.Vec) (float64, r3.Vec) {
	best := math.Inf(1)
	var normal r3.Vec
	try := func(o, d, half float64, n r3.Vec) {
		if d == 0 {
			return
		}
		wall := half
		if d < 0 {
			wall = -half
		}
		if t := (wall - o) / d; t > 0 && t < best {
			best = t
			normal = r3.Scale(-math.Copysign(1, d), n)
		}
	}
	try(origin.X, dir.X, s.cfg.Room.X, r3.Vec{X: 1})
	try(origin.Y, dir.Y, s.cfg.Room.Y, r3.Vec{Y: 1})
	try(origin.Z, dir.Z, s.cfg.Room.Z, r3.Vec{Z: 1})
	if math.IsInf(best, 1) {
		return 0, r3.Vec{}
	}
	return best, normal
}

// confidenceFor falls off with grazing incidence and with distance.
func confidenceFor(dir, normal r3.Vec, dist float64) float64 {
	cos := math.Abs(r3.Dot(r3.Unit(dir), normal))
	c := (0.25 + 0.75*cos) / (1 + 0.05*dist)
	return math.Max(0, math.Min(1, c))
}

// Run emits one frame per tick at the configured rate. Frames are dropped
// rather than queued when the receiver is still busy.
func (s *Synthetic) Run(ctx context.Context, out chan<- Frame) error {
	interval := time.Duration(float64(time.Second) / s.cfg.FrameRate)
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	start := s.clock.Now()
	monitoring.Logf("[Source] Synthetic room scan started: %dx%d at %.0f Hz", s.cfg.Width, s.cfg.Height, s.cfg.FrameRate)
	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("[Source] Synthetic room scan stopped: sent=%d dropped=%d", s.sent.Load(), s.dropped.Load())
			return nil
		case now := <-ticker.C():
			f := s.FrameAt(now.Sub(start))
			f.Timestamp = now
			select {
			case out <- f:
				s.sent.Add(1)
			default:
				s.dropped.Add(1)
			}
		}
	}
}

// Sent returns the number of frames delivered.
func (s *Synthetic) Sent() int64 { return s.sent.Load() }

// Dropped returns the number of frames discarded because the receiver was busy.
func (s *Synthetic) Dropped() int64 { return s.dropped.Load() }
