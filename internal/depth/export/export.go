// Package export writes ring buffer snapshots as .xyz point files.
package export

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/multierr"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/ringbuf"
	"github.com/banshee-data/pointcloud.recorder/internal/fsutil"
	"github.com/banshee-data/pointcloud.recorder/internal/monitoring"
	"github.com/banshee-data/pointcloud.recorder/internal/security"
	"github.com/banshee-data/pointcloud.recorder/internal/timeutil"
)

// FileName returns the export file name for t, pointcloud_YYYYMMDD-HHmmss.xyz.
func FileName(t time.Time) string {
	return "pointcloud_" + t.Format("20060102-150405") + ".xyz"
}

// Config configures an Exporter. Nil FS and Clock use the real ones.
type Config struct {
	Dir   string
	FS    fsutil.FileSystem
	Clock timeutil.Clock
}

// Exporter writes snapshots into a single directory.
type Exporter struct {
	dir   string
	fs    fsutil.FileSystem
	clock timeutil.Clock
}

// New returns an exporter for cfg. An empty Dir means the OS temp dir.
func New(cfg Config) *Exporter {
	e := &Exporter{dir: cfg.Dir, fs: cfg.FS, clock: cfg.Clock}
	if e.dir == "" {
		e.dir = os.TempDir()
	}
	if e.fs == nil {
		e.fs = fsutil.OSFileSystem{}
	}
	if e.clock == nil {
		e.clock = timeutil.RealClock{}
	}
	return e
}

// Dir returns the export directory.
func (e *Exporter) Dir() string { return e.dir }

// Result describes a finished export.
type Result struct {
	Path     string
	Total    int // points examined
	Written  int // points at or above the threshold
	Duration time.Duration
}

// Export writes every point of snap with confidence >= threshold as one
// "x y z" line. onProgress, if set, is called after each point with the
// fraction examined so far, reaching exactly 1.
//
// The file is written under a temporary name and renamed into place only
// after it is complete. On any failure, including cancellation of ctx, the
// temporary file is removed and no export file appears.
func (e *Exporter) Export(ctx context.Context, snap ringbuf.Snapshot, threshold float32, onProgress func(float64)) (Result, error) {
	start := e.clock.Now()
	res := Result{Total: snap.Count}

	path, err := security.ExportPath(e.dir, FileName(start))
	if err != nil {
		return res, fmt.Errorf("invalid export path: %w", err)
	}
	if err := e.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return res, fmt.Errorf("create export dir: %w", err)
	}

	tmp := path + ".partial"
	f, err := e.fs.Create(tmp)
	if err != nil {
		return res, fmt.Errorf("create export file: %w", err)
	}

	written, err := writePoints(ctx, f, snap, threshold, onProgress)
	err = multierr.Append(err, f.Close())
	if err == nil {
		err = e.fs.Rename(tmp, path)
	}
	if err != nil {
		if rmErr := e.fs.Remove(tmp); rmErr != nil && e.fs.Exists(tmp) {
			err = multierr.Append(err, rmErr)
		}
		monitoring.Logf("[Export] Failed after %d points: %v", written, err)
		return res, fmt.Errorf("export %s: %w", filepath.Base(path), err)
	}

	res.Path = path
	res.Written = written
	res.Duration = e.clock.Since(start)
	monitoring.Logf("[Export] Wrote %d of %d points to %s in %s", written, snap.Count, path, res.Duration)
	return res, nil
}

// cancelCheckInterval is how many points are written between context checks.
const cancelCheckInterval = 4096

func writePoints(ctx context.Context, w interface{ Write([]byte) (int, error) }, snap ringbuf.Snapshot, threshold float32, onProgress func(float64)) (int, error) {
	bw := bufio.NewWriterSize(w, 64*1024)
	n := snap.Count
	written := 0
	line := make([]byte, 0, 64)

	for i := 0; i < n; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return written, err
			}
		}
		p := snap.At(i)
		if p.Confidence >= threshold {
			line = line[:0]
			line = strconv.AppendFloat(line, float64(p.X), 'f', -1, 32)
			line = append(line, ' ')
			line = strconv.AppendFloat(line, float64(p.Y), 'f', -1, 32)
			line = append(line, ' ')
			line = strconv.AppendFloat(line, float64(p.Z), 'f', -1, 32)
			line = append(line, '\n')
			if _, err := bw.Write(line); err != nil {
				return written, err
			}
			written++
		}
		if onProgress != nil {
			onProgress(float64(i+1) / float64(n))
		}
	}
	return written, bw.Flush()
}
