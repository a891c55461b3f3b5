package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Intrinsics are the per-frame pinhole parameters plus the near-plane
// frustum bounds they were derived from.
type Intrinsics struct {
	Width, Height int
	Near          float64

	Left, Right, Bottom, Top float64

	Fx, Fy   float64
	Ppx, Ppy float64
}

// IntrinsicsFromFOV derives intrinsics for a width x height depth image.
// The frustum planes sit at tan(angle)*near; the focal terms and
// principal point follow from the planes.
func IntrinsicsFromFOV(fov FOV, width, height int, near float64) Intrinsics {
	in := Intrinsics{
		Width:  width,
		Height: height,
		Near:   near,
		Left:   math.Tan(fov.Left) * near,
		Right:  math.Tan(fov.Right) * near,
		Bottom: math.Tan(fov.Down) * near,
		Top:    math.Tan(fov.Up) * near,
	}
	in.Fx = 2 * near / (in.Right - in.Left)
	in.Fy = 2 * near / (in.Top - in.Bottom)
	in.Ppx = -(in.Right + in.Left) / (in.Right - in.Left) * float64(width) / 2
	in.Ppy = -(in.Top + in.Bottom) / (in.Top - in.Bottom) * float64(height) / 2
	return in
}

// PixelToCamera lifts pixel (u, v) at the given depth into camera space.
func PixelToCamera(u, v, depth float64, in Intrinsics) r3.Vec {
	return r3.Vec{
		X: (u - in.Ppx) * depth / in.Fx,
		Y: (in.Ppy - v) * depth / in.Fy,
		Z: -depth,
	}
}

// Ray returns the camera-space direction through pixel (u, v), scaled so
// its Z component is -1.
func (in Intrinsics) Ray(u, v float64) r3.Vec {
	return PixelToCamera(u, v, 1, in)
}
