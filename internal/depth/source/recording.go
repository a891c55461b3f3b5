package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"go.uber.org/multierr"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/geometry"
	"github.com/banshee-data/pointcloud.recorder/internal/fsutil"
	"github.com/banshee-data/pointcloud.recorder/internal/monitoring"
	"github.com/banshee-data/pointcloud.recorder/internal/timeutil"
)

const recordingVersion = 1

// recordingHeader opens every recording stream.
type recordingHeader struct {
	Version int
	Created time.Time
}

// recordedFrame is the on-disk form of a Frame. Confidence is quantised to
// the byte range the sensor reports.
type recordedFrame struct {
	UnixNano   int64
	Width      int
	Height     int
	Depth      []float32
	Confidence []byte
	Position   [3]float64
	Rotation   [4]float64 // x, y, z, w
	FOV        geometry.FOV
}

func toRecorded(f Frame) recordedFrame {
	conf := make([]byte, len(f.Depth.Confidence))
	for i, c := range f.Depth.Confidence {
		conf[i] = byte(math.Round(math.Max(0, math.Min(1, float64(c))) * 255))
	}
	p, q := f.Viewpoint.Pose.Position, f.Viewpoint.Pose.Orientation
	return recordedFrame{
		UnixNano:   f.Timestamp.UnixNano(),
		Width:      f.Depth.Width,
		Height:     f.Depth.Height,
		Depth:      f.Depth.Depth,
		Confidence: conf,
		Position:   [3]float64{p.X, p.Y, p.Z},
		Rotation:   [4]float64{q.Imag, q.Jmag, q.Kmag, q.Real},
		FOV:        f.Viewpoint.FOV,
	}
}

func (r recordedFrame) frame() Frame {
	return Frame{
		Depth: &geometry.DepthFrame{
			Width:      r.Width,
			Height:     r.Height,
			Depth:      r.Depth,
			Confidence: geometry.NormalizeConfidence(r.Confidence),
		},
		Viewpoint: geometry.Viewpoint{
			Pose: geometry.NewPose(r.Position[0], r.Position[1], r.Position[2],
				r.Rotation[0], r.Rotation[1], r.Rotation[2], r.Rotation[3]),
			FOV: r.FOV,
		},
		Timestamp: time.Unix(0, r.UnixNano),
	}
}

// Recorder appends frames to a gzip-compressed gob stream.
type Recorder struct {
	w      io.WriteCloser
	gz     *gzip.Writer
	enc    *gob.Encoder
	frames int
}

// NewRecorder writes the stream header to w. Closing the recorder closes w.
func NewRecorder(w io.WriteCloser, clock timeutil.Clock) (*Recorder, error) {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	gz := gzip.NewWriter(w)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(recordingHeader{Version: recordingVersion, Created: clock.Now().UTC()}); err != nil {
		return nil, multierr.Combine(fmt.Errorf("failed to write recording header: %w", err), gz.Close(), w.Close())
	}
	return &Recorder{w: w, gz: gz, enc: enc}, nil
}

// CreateRecorder creates path on fs and returns a recorder writing to it.
func CreateRecorder(fs fsutil.FileSystem, path string, clock timeutil.Clock) (*Recorder, error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}
	return NewRecorder(f, clock)
}

// Write appends one frame. Frames without a valid depth plane are skipped.
func (r *Recorder) Write(f Frame) error {
	if !f.Depth.Valid() {
		return nil
	}
	if err := r.enc.Encode(toRecorded(f)); err != nil {
		return fmt.Errorf("failed to encode frame %d: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames written.
func (r *Recorder) Frames() int { return r.frames }

// Close flushes the compressed stream and closes the underlying writer.
func (r *Recorder) Close() error {
	return multierr.Append(r.gz.Close(), r.w.Close())
}

// Tee forwards frames from in to the returned channel, recording each one.
// Recording errors are logged once and recording stops; forwarding
// continues. The recorder is closed when in is closed or ctx ends.
func Tee(ctx context.Context, in <-chan Frame, rec *Recorder) <-chan Frame {
	out := make(chan Frame, cap(in))
	go func() {
		defer close(out)
		defer func() {
			if err := rec.Close(); err != nil {
				monitoring.Logf("[Source] Failed to close recording: %v", err)
			}
			monitoring.Logf("[Source] Recorded %d frames", rec.Frames())
		}()
		recording := true
		for {
			select {
			case <-ctx.Done():
				return
			case f, ok := <-in:
				if !ok {
					return
				}
				if recording {
					if err := rec.Write(f); err != nil {
						monitoring.Logf("[Source] Recording stopped: %v", err)
						recording = false
					}
				}
				select {
				case out <- f:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Replay reads frames back from a recording.
type Replay struct {
	dec     *gob.Decoder
	header  recordingHeader
	clock   timeutil.Clock
	every   time.Duration
	decoded int
}

// NewReplay reads the stream header from r.
func NewReplay(r io.Reader) (*Replay, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	dec := gob.NewDecoder(gz)
	var h recordingHeader
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("failed to decode recording header: %w", err)
	}
	if h.Version != recordingVersion {
		return nil, fmt.Errorf("unsupported recording version %d", h.Version)
	}
	return &Replay{dec: dec, header: h}, nil
}

// LoadReplay reads a whole recording from fs.
func LoadReplay(fs fsutil.FileSystem, path string) (*Replay, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	return NewReplay(bytes.NewReader(data))
}

// Created returns when the recording was started.
func (r *Replay) Created() time.Time { return r.header.Created }

// SetPacing delivers one frame per interval from clock instead of as fast
// as the receiver accepts them.
func (r *Replay) SetPacing(clock timeutil.Clock, interval time.Duration) {
	r.clock = clock
	r.every = interval
}

// Next decodes the next frame. It returns io.EOF at the end of the recording.
func (r *Replay) Next() (Frame, error) {
	var rf recordedFrame
	if err := r.dec.Decode(&rf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("failed to decode frame %d: %w", r.decoded, err)
	}
	r.decoded++
	return rf.frame(), nil
}

// Run sends every recorded frame to out, then returns nil.
func (r *Replay) Run(ctx context.Context, out chan<- Frame) error {
	var tick <-chan time.Time
	if r.clock != nil && r.every > 0 {
		t := r.clock.NewTicker(r.every)
		defer t.Stop()
		tick = t.C()
	}
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			monitoring.Logf("[Source] Replay finished after %d frames", r.decoded)
			return nil
		}
		if err != nil {
			return err
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}
		select {
		case out <- f:
		case <-ctx.Done():
			return nil
		}
	}
}
