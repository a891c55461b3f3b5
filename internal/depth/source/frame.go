package source

import (
	"context"
	"time"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/geometry"
)

// Frame is a depth frame together with the camera viewpoint it was
// captured from.
type Frame struct {
	Depth     *geometry.DepthFrame
	Viewpoint geometry.Viewpoint
	Timestamp time.Time
}

// Source delivers frames on out until ctx is cancelled or the source is
// exhausted. Run returns nil on a clean end of input.
type Source interface {
	Run(ctx context.Context, out chan<- Frame) error
}
