package session

import (
	"context"
	"math"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/ringbuf"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/storage/sqlite"
	"github.com/banshee-data/pointcloud.recorder/internal/monitoring"
)

// startExport snapshots the buffer and exports it in the background. A
// request while an export is running is dropped.
func (s *Session) startExport(ctx context.Context) {
	if !s.exporting.CompareAndSwap(false, true) {
		s.exportsIgnored.Add(1)
		monitoring.Logf("[Session] Export already in progress, request ignored")
		return
	}
	s.progressBits.Store(0)
	snap := s.buf.Snapshot()

	s.exportWG.Add(1)
	go func() {
		defer s.exportWG.Done()
		defer s.exporting.Store(false)
		s.runExport(ctx, snap)
	}()
}

func (s *Session) runExport(ctx context.Context, snap ringbuf.Snapshot) {
	rec := &sqlite.ExportRecord{
		SessionID:   s.id,
		Threshold:   float64(s.cfg.ExportConfidence),
		TotalPoints: snap.Count,
	}
	if s.catalog != nil {
		if err := s.catalog.Insert(rec); err != nil {
			monitoring.Logf("[Session] Failed to catalog export: %v", err)
			rec.ExportID = ""
		}
	}

	res, err := s.exporter.Export(ctx, snap, s.cfg.ExportConfidence, func(p float64) {
		s.progressBits.Store(math.Float64bits(p))
	})

	s.mu.Lock()
	if err != nil {
		s.lastErrMsg = err.Error()
	} else {
		s.lastPath = res.Path
		s.lastErrMsg = ""
	}
	s.mu.Unlock()

	if err == nil {
		s.progressBits.Store(math.Float64bits(1))
	}
	if s.catalog == nil || rec.ExportID == "" {
		return
	}
	if err != nil {
		err = s.catalog.Fail(rec.ExportID, err)
	} else {
		err = s.catalog.Complete(rec.ExportID, res.Path, res.Total, res.Written)
	}
	if err != nil {
		monitoring.Logf("[Session] Failed to update export %s: %v", rec.ExportID, err)
	}
}
