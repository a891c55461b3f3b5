package ringbuf

import (
	"fmt"
	"sync"
)

// Stride is the number of float32 values per point.
const Stride = 4

// Point is one accumulated world-space sample.
type Point struct {
	X, Y, Z    float32
	Confidence float32
}

// Span is a run of consecutive point slots.
type Span struct {
	Begin int `json:"begin"`
	Count int `json:"count"`
}

// End returns the slot one past the span.
func (s Span) End() int { return s.Begin + s.Count }

// DirtyRange is the set of slots written since the last consumption. Second
// is non-empty only when the run wrapped past the end of storage, in which
// case First ends at capacity and Second starts at slot 0.
type DirtyRange struct {
	First  Span
	Second Span
}

// Empty reports whether nothing was written.
func (d DirtyRange) Empty() bool { return d.First.Count == 0 && d.Second.Count == 0 }

// Total returns the number of dirty slots.
func (d DirtyRange) Total() int { return d.First.Count + d.Second.Count }

// Spans returns the non-empty spans in write order.
func (d DirtyRange) Spans() []Span {
	var out []Span
	if d.First.Count > 0 {
		out = append(out, d.First)
	}
	if d.Second.Count > 0 {
		out = append(out, d.Second)
	}
	return out
}

// Buffer is a fixed-capacity ring of points.
type Buffer struct {
	capacity int

	mu         sync.Mutex
	cursor     int // next slot to write
	count      int // saturates at capacity
	dirtyBegin int
	dirtyCount int

	dataMu sync.RWMutex
	data   []float32
}

// New allocates a buffer for capacity points. It panics if capacity is not
// positive.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		panic(fmt.Sprintf("ringbuf: invalid capacity %d", capacity))
	}
	return &Buffer{
		capacity: capacity,
		data:     make([]float32, capacity*Stride),
	}
}

// Capacity returns the fixed capacity in points.
func (b *Buffer) Capacity() int { return b.capacity }

// Count returns the number of live points, at most Capacity.
func (b *Buffer) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Cursor returns the slot the next write goes to.
func (b *Buffer) Cursor() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

// WritePoint stores one point at the cursor and advances it, overwriting the
// oldest point once the buffer is full. Confidence is clamped to [0,1].
func (b *Buffer) WritePoint(x, y, z, confidence float32) {
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	slot := b.cursor
	b.dataMu.Lock()
	o := slot * Stride
	b.data[o] = x
	b.data[o+1] = y
	b.data[o+2] = z
	b.data[o+3] = confidence
	b.dataMu.Unlock()

	b.cursor = (slot + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
	switch {
	case b.dirtyCount == 0:
		b.dirtyBegin = slot
		b.dirtyCount = 1
	case b.dirtyCount < b.capacity:
		b.dirtyCount++
	default:
		// Every slot is already dirty; keep the run anchored at the oldest.
		b.dirtyBegin = b.cursor
	}
}

// Write stores p.
func (b *Buffer) Write(p Point) {
	b.WritePoint(p.X, p.Y, p.Z, p.Confidence)
}

// ConsumeDirtyRange returns the slots written since the previous call and
// clears them. A second call with no writes in between returns an empty
// range.
func (b *Buffer) ConsumeDirtyRange() DirtyRange {
	d, _ := b.ConsumeDirty()
	return d
}

// ConsumeDirty is ConsumeDirtyRange that also returns the point count
// observed in the same critical section.
func (b *Buffer) ConsumeDirty() (DirtyRange, int) {
	b.mu.Lock()
	begin, count, points := b.dirtyBegin, b.dirtyCount, b.count
	b.dirtyBegin, b.dirtyCount = b.cursor, 0
	b.mu.Unlock()

	return splitRange(begin, count, b.capacity), points
}

// PeekDirtyRange returns the pending dirty range without clearing it.
func (b *Buffer) PeekDirtyRange() DirtyRange {
	b.mu.Lock()
	begin, count := b.dirtyBegin, b.dirtyCount
	b.mu.Unlock()
	return splitRange(begin, count, b.capacity)
}

func splitRange(begin, count, capacity int) DirtyRange {
	if count == 0 {
		return DirtyRange{}
	}
	if begin+count <= capacity {
		return DirtyRange{First: Span{Begin: begin, Count: count}}
	}
	head := capacity - begin
	return DirtyRange{
		First:  Span{Begin: begin, Count: head},
		Second: Span{Begin: 0, Count: count - head},
	}
}

// CopySpan copies the floats of span s into dst, which must hold at least
// s.Count*Stride values, and returns the number of floats copied.
func (b *Buffer) CopySpan(dst []float32, s Span) int {
	if s.Begin < 0 || s.Count <= 0 || s.End() > b.capacity {
		return 0
	}
	b.dataMu.RLock()
	defer b.dataMu.RUnlock()
	return copy(dst, b.data[s.Begin*Stride:s.End()*Stride])
}

// Clear drops every point and the pending dirty range. Storage is not
// zeroed; Count governs what is live.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = 0
	b.count = 0
	b.dirtyBegin = 0
	b.dirtyCount = 0
}

// Snapshot is a private copy of the ring storage.
type Snapshot struct {
	Data   []float32
	Count  int
	Cursor int
}

// Snapshot copies the full storage along with the count and cursor observed
// just before the copy. Writes wait only for the copy itself.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.Lock()
	count, cursor := b.count, b.cursor
	b.mu.Unlock()

	data := make([]float32, len(b.data))
	b.dataMu.RLock()
	copy(data, b.data)
	b.dataMu.RUnlock()

	return Snapshot{Data: data, Count: count, Cursor: cursor}
}

// At returns the point in storage slot i.
func (s Snapshot) At(i int) Point {
	o := i * Stride
	return Point{X: s.Data[o], Y: s.Data[o+1], Z: s.Data[o+2], Confidence: s.Data[o+3]}
}

// Ordered returns the live points oldest first.
func (s Snapshot) Ordered() []Point {
	capacity := len(s.Data) / Stride
	out := make([]Point, 0, s.Count)
	start := 0
	if s.Count == capacity {
		start = s.Cursor
	}
	for i := 0; i < s.Count; i++ {
		out = append(out, s.At((start+i)%capacity))
	}
	return out
}
