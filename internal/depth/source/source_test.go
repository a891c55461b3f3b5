package source

import (
	"bytes"
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/geometry"
	"github.com/banshee-data/pointcloud.recorder/internal/fsutil"
	"github.com/banshee-data/pointcloud.recorder/internal/timeutil"
)

var symmetricFOV = geometry.FOV{Left: -0.5, Right: 0.5, Up: 0.5, Down: -0.5}

func newTestSynthetic(t *testing.T, mutate func(*SyntheticConfig)) *Synthetic {
	t.Helper()
	cfg := DefaultSyntheticConfig(8, 8, symmetricFOV)
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSynthetic(cfg)
	require.NoError(t, err)
	return s
}

func TestNewSyntheticRejectsBadConfig(t *testing.T) {
	cases := map[string]func(*SyntheticConfig){
		"zero width":      func(c *SyntheticConfig) { c.Width = 0 },
		"degenerate fov":  func(c *SyntheticConfig) { c.FOV.Right = c.FOV.Left },
		"flat room":       func(c *SyntheticConfig) { c.Room.Y = 0 },
		"orbit past wall": func(c *SyntheticConfig) { c.OrbitRadius = 5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultSyntheticConfig(8, 8, symmetricFOV)
			mutate(&cfg)
			_, err := NewSynthetic(cfg)
			assert.Error(t, err)
		})
	}
}

func TestSyntheticOpticalAxisDepth(t *testing.T) {
	s := newTestSynthetic(t, nil)
	f := s.FrameAt(0)

	require.True(t, f.Depth.Valid())
	assert.InDelta(t, 1.0, f.Viewpoint.Pose.Orientation.Real, 1e-12)
	assert.InDelta(t, 1.0, f.Viewpoint.Pose.Position.X, 1e-12)

	// Pixel (0,0) sits on the principal point for a symmetric FOV, so its ray
	// runs straight down -Z to the far wall.
	assert.InDelta(t, 3.0, float64(f.Depth.Depth[0]), 1e-6)
	assert.InDelta(t, 1/1.15, float64(f.Depth.Confidence[0]), 1e-6)
}

func TestSyntheticPointsLieOnWalls(t *testing.T) {
	s := newTestSynthetic(t, nil)
	room := s.cfg.Room
	intr := geometry.IntrinsicsFromFOV(symmetricFOV, 8, 8, 0.01)

	for _, elapsed := range []time.Duration{0, 3 * time.Second, 11 * time.Second} {
		f := s.FrameAt(elapsed)
		pose := f.Viewpoint.Pose
		for v := 0; v < 8; v++ {
			for u := 0; u < 8; u++ {
				d := float64(f.Depth.Depth[v*8+u])
				require.Greater(t, d, 0.0)
				c := f.Depth.Confidence[v*8+u]
				require.True(t, c > 0 && c <= 1, "confidence %v", c)

				p := geometry.CameraToWorld(geometry.PixelToCamera(float64(u), float64(v), d, intr), pose)
				extent := math.Max(math.Abs(p.X)/room.X, math.Max(math.Abs(p.Y)/room.Y, math.Abs(p.Z)/room.Z))
				assert.InDelta(t, 1.0, extent, 1e-4, "pixel (%d,%d) at %s", u, v, elapsed)
			}
		}
	}
}

func TestSyntheticInvalidFraction(t *testing.T) {
	s := newTestSynthetic(t, func(c *SyntheticConfig) {
		c.Width, c.Height = 32, 32
		c.InvalidFraction = 0.25
		c.Seed = 7
	})
	f := s.FrameAt(0)

	invalid := 0
	for i, d := range f.Depth.Depth {
		if d == 0 {
			invalid++
			assert.Zero(t, f.Depth.Confidence[i])
		}
	}
	assert.InDelta(t, 0.25, float64(invalid)/1024, 0.06)
}

func TestSyntheticRunEmitsOnTick(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := timeutil.NewMockClock(start)
	s := newTestSynthetic(t, func(c *SyntheticConfig) { c.Clock = clock })

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Frame, 1)
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, out) }()

	require.Eventually(t, func() bool { return len(clock.Tickers()) == 1 }, time.Second, time.Millisecond)
	tick := start.Add(5 * time.Second)
	clock.Tickers()[0].Trigger(tick)

	select {
	case f := <-out:
		assert.Equal(t, tick, f.Timestamp)
		assert.Equal(t, s.PoseAt(5*time.Second), f.Viewpoint.Pose)
	case <-time.After(2 * time.Second):
		t.Fatal("no frame emitted")
	}

	cancel()
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, s.Sent())
}

func TestRecordingRoundTrip(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	clock := timeutil.NewMockClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s := newTestSynthetic(t, func(c *SyntheticConfig) { c.InvalidFraction = 0.1 })

	rec, err := CreateRecorder(mem, "/rec/scan.gob.gz", clock)
	require.NoError(t, err)

	var want []Frame
	for i := 0; i < 3; i++ {
		f := s.FrameAt(time.Duration(i) * time.Second)
		f.Timestamp = clock.Now().Add(time.Duration(i) * 33 * time.Millisecond)
		want = append(want, f)
		require.NoError(t, rec.Write(f))
	}
	// Invalid frames are not recorded.
	require.NoError(t, rec.Write(Frame{}))
	require.NoError(t, rec.Close())
	assert.Equal(t, 3, rec.Frames())

	replay, err := LoadReplay(mem, "/rec/scan.gob.gz")
	require.NoError(t, err)
	assert.True(t, clock.Now().Equal(replay.Created()))

	for i, w := range want {
		got, err := replay.Next()
		require.NoError(t, err, "frame %d", i)
		assert.True(t, w.Timestamp.Equal(got.Timestamp))
		assert.Equal(t, w.Depth.Depth, got.Depth.Depth)
		for j := range w.Depth.Confidence {
			assert.InDelta(t, w.Depth.Confidence[j], got.Depth.Confidence[j], 0.5/255+1e-6)
		}
		assert.Equal(t, w.Viewpoint.FOV, got.Viewpoint.FOV)
		assert.InDelta(t, w.Viewpoint.Pose.Position.Z, got.Viewpoint.Pose.Position.Z, 1e-12)
		assert.InDelta(t, w.Viewpoint.Pose.Orientation.Jmag, got.Viewpoint.Pose.Orientation.Jmag, 1e-12)
	}
	_, err = replay.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNewReplayRejectsGarbage(t *testing.T) {
	_, err := NewReplay(bytes.NewReader([]byte("not a recording")))
	assert.Error(t, err)
}

func TestTeeRecordsAndForwards(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	rec, err := CreateRecorder(mem, "/tee.gob.gz", nil)
	require.NoError(t, err)

	s := newTestSynthetic(t, nil)
	in := make(chan Frame, 4)
	for i := 0; i < 4; i++ {
		in <- s.FrameAt(time.Duration(i) * time.Second)
	}
	close(in)

	var forwarded int
	for range Tee(context.Background(), in, rec) {
		forwarded++
	}
	assert.Equal(t, 4, forwarded)

	replay, err := LoadReplay(mem, "/tee.gob.gz")
	require.NoError(t, err)
	out := make(chan Frame, 8)
	require.NoError(t, replay.Run(context.Background(), out))
	assert.Len(t, out, 4)
}
