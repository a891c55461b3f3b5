package render

import (
	"fmt"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/render/pb"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/ringbuf"
)

// Mirror is a consumer-owned copy of ring storage. It is not safe for
// concurrent use.
type Mirror struct {
	data  []float32
	count int
}

// NewMirror allocates a mirror for capacity points. A zero capacity mirror
// sizes itself from the first applied chunk.
func NewMirror(capacity int) *Mirror {
	return &Mirror{data: make([]float32, capacity*ringbuf.Stride)}
}

// Capacity returns the mirrored capacity in points.
func (m *Mirror) Capacity() int { return len(m.data) / ringbuf.Stride }

// Count returns the number of drawable points.
func (m *Mirror) Count() int { return m.count }

// Sync drains buf's dirty range and copies exactly those spans.
func (m *Mirror) Sync(buf *ringbuf.Buffer) ringbuf.DirtyRange {
	if m.Capacity() != buf.Capacity() {
		m.data = make([]float32, buf.Capacity()*ringbuf.Stride)
	}
	d, count := buf.ConsumeDirty()
	for _, s := range d.Spans() {
		buf.CopySpan(m.data[s.Begin*ringbuf.Stride:], s)
	}
	m.count = count
	return d
}

// Apply writes a points chunk received from a Publisher.
func (m *Mirror) Apply(c *pb.PointsChunk) error {
	if c == nil {
		return fmt.Errorf("cannot apply an empty chunk")
	}
	capacity := int(c.GetCapacity())
	if m.Capacity() != capacity {
		m.data = make([]float32, capacity*ringbuf.Stride)
	}
	end := int(c.GetBegin()) + int(c.GetCount())
	if end > capacity || len(c.GetFloats()) != int(c.GetCount())*ringbuf.Stride {
		return fmt.Errorf("chunk [%d,%d) with %d floats does not fit capacity %d", c.GetBegin(), end, len(c.GetFloats()), capacity)
	}
	copy(m.data[int(c.GetBegin())*ringbuf.Stride:], c.GetFloats())
	m.count = int(c.GetPointCount())
	return nil
}

// Span returns the floats of span s; the slice aliases mirror storage.
func (m *Mirror) Span(s ringbuf.Span) []float32 {
	return m.data[s.Begin*ringbuf.Stride : s.End()*ringbuf.Stride]
}

// Points returns a copy of the drawable prefix of storage.
func (m *Mirror) Points() []ringbuf.Point {
	out := make([]ringbuf.Point, m.count)
	for i := range out {
		o := i * ringbuf.Stride
		out[i] = ringbuf.Point{X: m.data[o], Y: m.data[o+1], Z: m.data[o+2], Confidence: m.data[o+3]}
	}
	return out
}
