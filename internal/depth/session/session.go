// Package session runs one recording session: it owns the point buffer and
// the pipeline around it, validates the incoming stream against the
// calibration, applies control commands and publishes a state snapshot for
// monitoring surfaces.
//
// All frame processing and command handling happens on the goroutine that
// calls Run. Exports run on their own goroutine from a buffer snapshot, one
// at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/banshee-data/pointcloud.recorder/internal/config"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/accumulator"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/export"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/geometry"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/motion"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/render"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/ringbuf"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/sampling"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/source"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/storage/sqlite"
	"github.com/banshee-data/pointcloud.recorder/internal/monitoring"
)

// Config sizes a session. Zero values take the package defaults of the
// components they configure.
type Config struct {
	Calibration Calibration

	Capacity      int
	ConeAngle     float64
	PatternCount  int
	TargetSamples int

	MinDistance float64
	MinAngle    float64

	Near, Far        float64
	AcceptConfidence float32
	ExportConfidence float32

	CommandQueueSize int
}

// ConfigFromRecorder maps a loaded recorder configuration onto a session
// configuration.
func ConfigFromRecorder(rc *config.RecorderConfig) Config {
	return Config{
		Calibration: Calibration{
			Width:  rc.GetDepthWidth(),
			Height: rc.GetDepthHeight(),
			FOV: geometry.FOV{
				Left:  rc.GetFOVLeft(),
				Right: rc.GetFOVRight(),
				Up:    rc.GetFOVUp(),
				Down:  rc.GetFOVDown(),
			},
		},
		Capacity:         rc.GetCapacity(),
		ConeAngle:        rc.GetConeAngle(),
		PatternCount:     rc.GetPatternCount(),
		TargetSamples:    rc.GetTargetSamples(),
		MinDistance:      rc.GetMinDistance(),
		MinAngle:         rc.GetMinAngle(),
		Near:             rc.GetNear(),
		Far:              rc.GetFar(),
		AcceptConfidence: float32(rc.GetAcceptConfidence()),
		ExportConfidence: float32(rc.GetExportConfidence()),
		CommandQueueSize: rc.GetCommandQueueSize(),
	}
}

// Catalog records export attempts. *sqlite.Catalog implements it.
type Catalog interface {
	Insert(rec *sqlite.ExportRecord) error
	Complete(exportID, path string, total, written int) error
	Fail(exportID string, cause error) error
}

// State is a point-in-time view of a session, safe to read from any
// goroutine.
type State struct {
	SessionID       string  `json:"session_id"`
	Calibrated      bool    `json:"calibrated"`
	PointCount      int     `json:"point_count"`
	Capacity        int     `json:"capacity"`
	Recording       bool    `json:"recording"`
	PointsVisible   bool    `json:"points_visible"`
	Exporting       bool    `json:"exporting"`
	ExportProgress  float64 `json:"export_progress"`
	LastExportPath  string  `json:"last_export_path,omitempty"`
	LastExportError string  `json:"last_export_error,omitempty"`
	FramesReceived  uint64  `json:"frames_received"`
	FramesSampled   uint64  `json:"frames_sampled"`
	FramesSkipped   uint64  `json:"frames_skipped"`
	MaxDepth        float32 `json:"max_depth"`
	CommandsDropped uint64  `json:"commands_dropped"`
	ExportsIgnored  uint64  `json:"exports_ignored"`
}

// Session is one recording session.
type Session struct {
	id       string
	cfg      Config
	buf      *ringbuf.Buffer
	sampler  *sampling.Manager
	mailbox  *render.Mailbox
	acc      *accumulator.Accumulator
	exporter *export.Exporter
	catalog  Catalog

	commands chan Command

	calibrated      atomic.Bool
	framesReceived  atomic.Uint64
	framesSampled   atomic.Uint64
	framesSkipped   atomic.Uint64
	maxDepthBits    atomic.Uint32
	commandsDropped atomic.Uint64
	exportsIgnored  atomic.Uint64

	exporting    atomic.Bool
	progressBits atomic.Uint64
	exportWG     sync.WaitGroup

	mu         sync.Mutex
	lastPath   string
	lastErrMsg string
}

// New builds a session and its pipeline. catalog may be nil.
func New(cfg Config, exporter *export.Exporter, catalog Catalog) (*Session, error) {
	cal := cfg.Calibration
	if cal.Width <= 0 || cal.Height <= 0 || cal.FOV.IsZero() {
		return nil, errors.New("session needs a calibrated resolution and field of view")
	}
	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("invalid point capacity %d", cfg.Capacity)
	}
	if exporter == nil {
		return nil, errors.New("session needs an exporter")
	}
	if cfg.CommandQueueSize <= 0 {
		cfg.CommandQueueSize = 1
	}
	if cfg.ExportConfidence == 0 {
		cfg.ExportConfidence = 0.5
	}
	if cfg.MinDistance <= 0 {
		cfg.MinDistance = motion.DefaultMinDistance
	}
	if cfg.MinAngle <= 0 {
		cfg.MinAngle = motion.DefaultMinAngle
	}

	sampler, err := sampling.NewManager(sampling.Config{
		Width:         cal.Width,
		Height:        cal.Height,
		FOV:           cal.FOV,
		ConeAngle:     cfg.ConeAngle,
		PatternCount:  cfg.PatternCount,
		TargetSamples: cfg.TargetSamples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build sampling patterns: %w", err)
	}

	buf := ringbuf.New(cfg.Capacity)
	mailbox := render.NewMailbox()
	acc := accumulator.New(accumulator.Config{
		Near:             cfg.Near,
		Far:              cfg.Far,
		AcceptConfidence: cfg.AcceptConfidence,
	}, buf, sampler, motion.NewGate(cfg.MinDistance, cfg.MinAngle), mailbox)

	s := &Session{
		id:       uuid.New().String(),
		cfg:      cfg,
		buf:      buf,
		sampler:  sampler,
		mailbox:  mailbox,
		acc:      acc,
		exporter: exporter,
		catalog:  catalog,
		commands: make(chan Command, cfg.CommandQueueSize),
	}
	monitoring.Logf("[Session] %s created: %dx%d capacity=%d patterns=%d",
		s.id, cal.Width, cal.Height, cfg.Capacity, sampler.PatternCount())
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Buffer returns the session's point buffer.
func (s *Session) Buffer() *ringbuf.Buffer { return s.buf }

// Sampler returns the session's sampling patterns.
func (s *Session) Sampler() *sampling.Manager { return s.sampler }

// Mailbox returns the frame statistics hand-off read by renderers.
func (s *Session) Mailbox() *render.Mailbox { return s.mailbox }

// Calibration returns the geometry the session was built for.
func (s *Session) Calibration() Calibration { return s.cfg.Calibration }

// State returns the current published state.
func (s *Session) State() State {
	s.mu.Lock()
	lastPath, lastErr := s.lastPath, s.lastErrMsg
	s.mu.Unlock()

	return State{
		SessionID:       s.id,
		Calibrated:      s.calibrated.Load(),
		PointCount:      s.buf.Count(),
		Capacity:        s.buf.Capacity(),
		Recording:       s.acc.Recording(),
		PointsVisible:   s.mailbox.Visible(),
		Exporting:       s.exporting.Load(),
		ExportProgress:  math.Float64frombits(s.progressBits.Load()),
		LastExportPath:  lastPath,
		LastExportError: lastErr,
		FramesReceived:  s.framesReceived.Load(),
		FramesSampled:   s.framesSampled.Load(),
		FramesSkipped:   s.framesSkipped.Load(),
		MaxDepth:        math.Float32frombits(s.maxDepthBits.Load()),
		CommandsDropped: s.commandsDropped.Load(),
		ExportsIgnored:  s.exportsIgnored.Load(),
	}
}

// Run processes frames and commands until ctx is cancelled or frames is
// closed. The first frame with a resolution and field of view is checked
// against the calibration; a mismatch ends the session with an error
// matching ErrEnvironmentMismatch. Run waits for any export in flight
// before returning.
func (s *Session) Run(ctx context.Context, frames <-chan source.Frame) error {
	defer s.exportWG.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-s.commands:
			s.apply(ctx, cmd)
		case f, ok := <-frames:
			if !ok {
				monitoring.Logf("[Session] Frame stream ended after %d frames", s.framesReceived.Load())
				return nil
			}
			if err := s.handleFrame(f); err != nil {
				return err
			}
		}
	}
}

func (s *Session) handleFrame(f source.Frame) error {
	s.framesReceived.Add(1)

	if !s.calibrated.Load() {
		if !Ready(f.Depth, f.Viewpoint.FOV) {
			s.framesSkipped.Add(1)
			return nil
		}
		if err := s.cfg.Calibration.Validate(f.Depth, f.Viewpoint.FOV); err != nil {
			monitoring.Logf("[Session] %v", err)
			return fmt.Errorf("session %s: %w", s.id, err)
		}
		s.calibrated.Store(true)
		monitoring.Logf("[Session] Stream matches calibration %dx%d", f.Depth.Width, f.Depth.Height)
	} else if f.Depth != nil && (f.Depth.Width != s.cfg.Calibration.Width || f.Depth.Height != s.cfg.Calibration.Height) {
		debugf("frame %d: %dx%d does not match calibration, skipped", s.framesReceived.Load(), f.Depth.Width, f.Depth.Height)
		s.framesSkipped.Add(1)
		return nil
	}

	res := s.acc.ProcessFrame(f.Depth, f.Viewpoint)
	if res.Skipped {
		s.framesSkipped.Add(1)
		return nil
	}
	if res.Stats.Sampled {
		s.framesSampled.Add(1)
		debugf("frame %d: wrote %d points, count=%d", s.framesReceived.Load(), res.Stats.Written, res.Stats.PointCount)
	}
	s.maxDepthBits.Store(math.Float32bits(res.Stats.MaxDepth))
	return nil
}

func (s *Session) apply(ctx context.Context, cmd Command) {
	debugf("command %s", cmd.Kind)
	switch cmd.Kind {
	case CommandExport:
		s.startExport(ctx)
	case CommandClear:
		s.buf.Clear()
		monitoring.Logf("[Session] Cleared point buffer")
	case CommandSetRecording:
		s.acc.SetRecording(cmd.Enabled)
	case CommandToggleRecording:
		s.acc.SetRecording(!s.acc.Recording())
	case CommandTogglePointsVisible:
		s.mailbox.SetVisible(!s.mailbox.Visible())
	default:
		monitoring.Logf("[Session] Ignoring unknown command %d", cmd.Kind)
	}
}
