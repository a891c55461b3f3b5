package render

import (
	"github.com/banshee-data/pointcloud.recorder/internal/depth/render/pb"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/ringbuf"
)

// maxChunkPoints bounds a single message to about 256KB of floats.
const maxChunkPoints = 16384

// pointsChunk copies span s of storage into a streamed chunk.
func pointsChunk(data []float32, s ringbuf.Span, pointCount, capacity int) *pb.Chunk {
	floats := make([]float32, s.Count*ringbuf.Stride)
	copy(floats, data[s.Begin*ringbuf.Stride:s.End()*ringbuf.Stride])
	return &pb.Chunk{Points: &pb.PointsChunk{
		Begin:      uint32(s.Begin),
		Count:      uint32(s.Count),
		Capacity:   uint32(capacity),
		PointCount: uint32(pointCount),
		Floats:     floats,
	}}
}

// spanChunks splits s into chunks of at most maxChunkPoints.
func spanChunks(data []float32, s ringbuf.Span, pointCount, capacity int) []*pb.Chunk {
	var out []*pb.Chunk
	for begin := s.Begin; begin < s.End(); begin += maxChunkPoints {
		n := min(maxChunkPoints, s.End()-begin)
		out = append(out, pointsChunk(data, ringbuf.Span{Begin: begin, Count: n}, pointCount, capacity))
	}
	return out
}

// frameChunk converts frame stats for the wire.
func frameChunk(s FrameStats, visible bool) *pb.Chunk {
	f := &pb.FrameStats{
		PointCount:     uint32(s.PointCount),
		MaxDepth:       s.MaxDepth,
		Sampled:        s.Sampled,
		PointsVisible:  visible,
		Written:        uint32(s.Written),
		Projection:     make([]float32, 16),
		ViewProjection: make([]float32, 16),
	}
	for i := 0; i < 16; i++ {
		f.Projection[i] = float32(s.Projection[i])
		f.ViewProjection[i] = float32(s.ViewProjection[i])
	}
	return &pb.Chunk{Frame: f}
}
