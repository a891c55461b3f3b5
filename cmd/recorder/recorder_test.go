package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pointcloud.recorder/internal/config"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/source"
	"github.com/banshee-data/pointcloud.recorder/internal/fsutil"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDepthWidth, cfg.GetDepthWidth())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorder.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"capacity": 2048}`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.GetCapacity())

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestNewSourceSynthetic(t *testing.T) {
	src, err := newSource(config.EmptyRecorderConfig(), fsutil.NewMemoryFileSystem(), "")
	require.NoError(t, err)
	_, ok := src.(*source.Synthetic)
	assert.True(t, ok)
}

func TestNewSourceReplay(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	rec, err := source.CreateRecorder(mem, "/scan.rec", nil)
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	src, err := newSource(config.EmptyRecorderConfig(), mem, "/scan.rec")
	require.NoError(t, err)
	_, ok := src.(*source.Replay)
	assert.True(t, ok)

	_, err = newSource(config.EmptyRecorderConfig(), mem, "/missing.rec")
	assert.Error(t, err)
}

func TestRunReturnsWhenReplayEnds(t *testing.T) {
	dir := t.TempDir()
	recPath := filepath.Join(dir, "empty.rec")
	rec, err := source.CreateRecorder(fsutil.OSFileSystem{}, recPath, nil)
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	saved := []string{*listen, *grpcListen, *dbFile, *exportDir, *replayPath, *recordPath, *configPath}
	defer func() {
		*listen, *grpcListen, *dbFile, *exportDir = saved[0], saved[1], saved[2], saved[3]
		*replayPath, *recordPath, *configPath = saved[4], saved[5], saved[6]
	}()
	*listen = "127.0.0.1:0"
	*grpcListen = "127.0.0.1:0"
	*dbFile = ""
	*exportDir = dir
	*replayPath = recPath
	*recordPath = ""
	*configPath = ""

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
		assert.NoError(t, ctx.Err(), "run should return before the parent context expires")
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the replay finished")
	}
}
