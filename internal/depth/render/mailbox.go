package render

import (
	"sync"
	"sync/atomic"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/geometry"
)

// FrameStats is what the accumulator hands the renderer after every frame.
type FrameStats struct {
	MaxDepth       float32
	Intrinsics     geometry.Intrinsics
	Projection     [16]float64
	ViewProjection [16]float64
	PointCount     int
	Written        int  // points written this frame
	Sampled        bool // the frame passed the recording toggle and motion gate

	// Depth is the frame's depth map. It is shared and must not be modified.
	Depth *geometry.DepthFrame
}

// Mailbox is a single-slot, latest-wins hand-off of FrameStats. The
// consumer reads and clears it in one step.
type Mailbox struct {
	mu      sync.Mutex
	stats   FrameStats
	pending bool
	latest  FrameStats
	seen    bool

	visible atomic.Bool
}

// NewMailbox returns an empty mailbox with points visible.
func NewMailbox() *Mailbox {
	m := &Mailbox{}
	m.visible.Store(true)
	return m
}

// Publish replaces any unread stats.
func (m *Mailbox) Publish(s FrameStats) {
	m.mu.Lock()
	m.stats = s
	m.pending = true
	m.latest = s
	m.seen = true
	m.mu.Unlock()
}

// Take returns the unread stats, if any, and clears the slot.
func (m *Mailbox) Take() (FrameStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pending {
		return FrameStats{}, false
	}
	s := m.stats
	m.stats = FrameStats{}
	m.pending = false
	return s, true
}

// Latest returns the most recently published stats whether or not they
// were taken.
func (m *Mailbox) Latest() (FrameStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.seen
}

// SetVisible sets whether renderers should draw the points.
func (m *Mailbox) SetVisible(v bool) { m.visible.Store(v) }

// Visible reports whether renderers should draw the points.
func (m *Mailbox) Visible() bool { return m.visible.Load() }
