package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/ringbuf"
	"github.com/banshee-data/pointcloud.recorder/internal/fsutil"
	"github.com/banshee-data/pointcloud.recorder/internal/timeutil"
)

var exportTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func threePoints() ringbuf.Snapshot {
	b := ringbuf.New(8)
	b.WritePoint(1, 2, 3, 0.9)
	b.WritePoint(4, 5, 6, 0.3)
	b.WritePoint(7, 8, 9, 0.6)
	return b.Snapshot()
}

func newTestExporter(fs fsutil.FileSystem) *Exporter {
	return New(Config{Dir: "/exports", FS: fs, Clock: timeutil.NewMockClock(exportTime)})
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "pointcloud_20240309-140507.xyz", FileName(exportTime))
}

func TestExportFiltersByConfidence(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	e := newTestExporter(mem)

	var progress []float64
	res, err := e.Export(context.Background(), threePoints(), 0.5, func(p float64) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, "/exports/pointcloud_20240309-140507.xyz", res.Path)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Written)

	data, err := mem.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "1 2 3\n7 8 9\n", string(data))

	require.Len(t, progress, 3)
	assert.InDelta(t, 1.0/3, progress[0], 1e-12)
	assert.InDelta(t, 2.0/3, progress[1], 1e-12)
	assert.Equal(t, 1.0, progress[2])

	assert.Equal(t, []string{res.Path}, mem.Files())
}

func TestExportThresholdIsInclusive(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	b := ringbuf.New(4)
	b.WritePoint(0.5, -1.25, 2, 0.5)

	res, err := newTestExporter(mem).Export(context.Background(), b.Snapshot(), 0.5, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)

	data, err := mem.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "0.5 -1.25 2\n", string(data))
}

func TestExportEmptySnapshot(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	calls := 0

	res, err := newTestExporter(mem).Export(context.Background(), ringbuf.New(4).Snapshot(), 0.5, func(float64) {
		calls++
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Zero(t, res.Written)

	data, err := mem.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestExportWrappedBufferUsesSlotOrder(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	b := ringbuf.New(3)
	for i := 1; i <= 4; i++ {
		b.WritePoint(float32(i), 0, 0, 1)
	}

	res, err := newTestExporter(mem).Export(context.Background(), b.Snapshot(), 0, nil)
	require.NoError(t, err)

	data, err := mem.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "4 0 0\n2 0 0\n3 0 0\n", string(data))
}

func TestExportFailuresLeaveNoFile(t *testing.T) {
	cases := []struct {
		name string
		fs   func(fsutil.FileSystem) *fsutil.FaultyFileSystem
	}{
		{"create", func(base fsutil.FileSystem) *fsutil.FaultyFileSystem {
			return &fsutil.FaultyFileSystem{FileSystem: base, FailCreate: true}
		}},
		{"write", func(base fsutil.FileSystem) *fsutil.FaultyFileSystem {
			return &fsutil.FaultyFileSystem{FileSystem: base, FailWriteAfter: 3}
		}},
		{"close", func(base fsutil.FileSystem) *fsutil.FaultyFileSystem {
			return &fsutil.FaultyFileSystem{FileSystem: base, FailClose: true}
		}},
		{"rename", func(base fsutil.FileSystem) *fsutil.FaultyFileSystem {
			return &fsutil.FaultyFileSystem{FileSystem: base, FailRename: true, Suffix: ".xyz"}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mem := fsutil.NewMemoryFileSystem()
			e := newTestExporter(tc.fs(mem))

			res, err := e.Export(context.Background(), threePoints(), 0.5, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, fsutil.ErrInjected), "err = %v", err)
			assert.Empty(t, res.Path)
			assert.Empty(t, mem.Files())
		})
	}
}

func TestExportCancelled(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestExporter(mem).Export(ctx, threePoints(), 0.5, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mem.Files())
}
