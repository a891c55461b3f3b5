package render

import (
	"image"
	"image/color"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/geometry"
)

// DepthPreview renders a depth map as grayscale, scaled so maxDepth is
// white. Invalid pixels are black. It returns nil for an invalid frame.
func DepthPreview(f *geometry.DepthFrame, maxDepth float32) *image.Gray {
	if !f.Valid() {
		return nil
	}
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	if maxDepth <= 0 {
		return img
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			d := f.Depth[y*f.Width+x]
			if d <= 0 {
				continue
			}
			v := d / maxDepth
			if v > 1 {
				v = 1
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v*254 + 1)})
		}
	}
	return img
}
