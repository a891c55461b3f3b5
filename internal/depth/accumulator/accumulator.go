// Package accumulator turns depth frames into world points.
//
// Each frame is processed in order on a single goroutine: intrinsics are
// re-derived from the frame's field of view, the motion gate and then the
// recording toggle decide whether to sample, and the next foveated pattern
// picks the pixels to lift into the ring buffer. The gate sees every frame,
// so it keeps tracking the camera while recording is off.
package accumulator

import (
	"sync/atomic"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/geometry"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/motion"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/render"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/ringbuf"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/sampling"
	"github.com/banshee-data/pointcloud.recorder/internal/monitoring"
)

// State is the processing state of an Accumulator.
type State int32

const (
	Idle State = iota
	Processing
)

func (s State) String() string {
	if s == Processing {
		return "processing"
	}
	return "idle"
}

// Config holds the accumulator's constants. Zero values take defaults.
type Config struct {
	Near float64 // default 0.01
	Far  float64 // default 10

	// AcceptConfidence is the exclusive lower bound a pixel's confidence
	// must exceed; default 0.5.
	AcceptConfidence float32
}

// DefaultConfig returns the reference device constants.
func DefaultConfig() Config {
	return Config{Near: 0.01, Far: 10, AcceptConfidence: 0.5}
}

// StatsSink receives the statistics of every processed frame.
type StatsSink interface {
	Publish(render.FrameStats)
}

// Result describes what ProcessFrame did with one frame.
type Result struct {
	Skipped bool // malformed frame, nothing happened
	Stats   render.FrameStats
}

// Accumulator owns the per-stream sequential state: the motion gate, the
// pattern cursor and the running maximum depth.
type Accumulator struct {
	cfg       Config
	buf       *ringbuf.Buffer
	sampler   *sampling.Manager
	gate      *motion.Gate
	projector *geometry.Projector
	sink      StatsSink

	recording atomic.Bool
	state     atomic.Int32
	maxDepth  float32
}

// New wires an accumulator. sink may be nil.
func New(cfg Config, buf *ringbuf.Buffer, sampler *sampling.Manager, gate *motion.Gate, sink StatsSink) *Accumulator {
	def := DefaultConfig()
	if cfg.Near <= 0 {
		cfg.Near = def.Near
	}
	if cfg.Far <= cfg.Near {
		cfg.Far = def.Far
	}
	if cfg.AcceptConfidence == 0 {
		cfg.AcceptConfidence = def.AcceptConfidence
	}
	a := &Accumulator{
		cfg:       cfg,
		buf:       buf,
		sampler:   sampler,
		gate:      gate,
		projector: geometry.NewProjector(),
		sink:      sink,
	}
	a.recording.Store(true)
	return a
}

// SetRecording enables or disables sampling. Frames still produce stats.
func (a *Accumulator) SetRecording(on bool) { a.recording.Store(on) }

// Recording reports whether sampling is enabled.
func (a *Accumulator) Recording() bool { return a.recording.Load() }

// State reports whether a frame is being processed.
func (a *Accumulator) State() State { return State(a.state.Load()) }

// MaxDepth returns the largest valid depth seen in sampled pixels. It is
// only meaningful on the processing goroutine or after it has stopped.
func (a *Accumulator) MaxDepth() float32 { return a.maxDepth }

// ProcessFrame runs one frame through the pipeline. Frames with missing
// planes, a degenerate field of view or dimensions other than the sampling
// grid are skipped. It must not be called concurrently.
func (a *Accumulator) ProcessFrame(depth *geometry.DepthFrame, vp geometry.Viewpoint) Result {
	if !depth.Valid() || vp.FOV.Degenerate() {
		return Result{Skipped: true}
	}
	if w, h := a.sampler.Size(); depth.Width != w || depth.Height != h {
		return Result{Skipped: true}
	}
	a.state.Store(int32(Processing))
	defer a.state.Store(int32(Idle))

	in := geometry.IntrinsicsFromFOV(vp.FOV, depth.Width, depth.Height, a.cfg.Near)
	stats := render.FrameStats{
		Intrinsics: in,
		Projection: geometry.Frustum(in.Left, in.Right, in.Bottom, in.Top, a.cfg.Near, a.cfg.Far),
		Depth:      depth,
	}
	viewProj, err := a.projector.ViewProjection(vp.Pose, vp.FOV, a.cfg.Near, a.cfg.Far)
	if err != nil {
		monitoring.Logf("[Accumulator] View-projection unavailable: %v", err)
	} else {
		stats.ViewProjection = viewProj
	}

	if a.gate.ShouldSample(vp.Pose) && a.recording.Load() {
		stats.Sampled = true
		stats.Written = a.sample(depth, in, vp.Pose)
	}

	stats.MaxDepth = a.maxDepth
	stats.PointCount = a.buf.Count()
	if a.sink != nil {
		a.sink.Publish(stats)
	}
	return Result{Stats: stats}
}

// sample lifts the pixels of the next foveated pattern and returns how many
// points were written.
func (a *Accumulator) sample(depth *geometry.DepthFrame, in geometry.Intrinsics, pose geometry.Pose) int {
	T := geometry.PoseMatrix(pose)
	n := len(depth.Depth)
	written := 0
	for _, idx := range a.sampler.NextFoveatedPattern() {
		if idx >= n {
			continue
		}
		z := depth.Depth[idx]
		if z <= 0 {
			continue
		}
		if z > a.maxDepth {
			a.maxDepth = z
		}
		c := depth.Confidence[idx]
		if c <= a.cfg.AcceptConfidence {
			continue
		}

		u, v := idx%depth.Width, idx/depth.Width
		cam := geometry.PixelToCamera(float64(u), float64(v), float64(z), in)
		w := geometry.ApplyPose(cam, T)
		a.buf.WritePoint(float32(w.X), float32(w.Y), float32(w.Z), c)
		written++
	}
	return written
}
