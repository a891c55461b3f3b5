package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// PoseMatrix returns the pose as a row-major 4x4 rigid transform.
func PoseMatrix(p Pose) [16]float64 {
	w, x, y, z := p.Orientation.Real, p.Orientation.Imag, p.Orientation.Jmag, p.Orientation.Kmag
	xx, xy, xz, xw := x*x, x*y, x*z, x*w
	yy, yz, yw := y*y, y*z, y*w
	zz, zw := z*z, z*w

	return [16]float64{
		1 - 2*(yy+zz), 2 * (xy - zw), 2 * (xz + yw), p.Position.X,
		2 * (xy + zw), 1 - 2*(xx+zz), 2 * (yz - xw), p.Position.Y,
		2 * (xz - yw), 2 * (yz + xw), 1 - 2*(xx+yy), p.Position.Z,
		0, 0, 0, 1,
	}
}

// ApplyPose applies the rotation and translation rows of a row-major
// transform T to p.
func ApplyPose(p r3.Vec, T [16]float64) r3.Vec {
	return r3.Vec{
		X: T[0]*p.X + T[1]*p.Y + T[2]*p.Z + T[3],
		Y: T[4]*p.X + T[5]*p.Y + T[6]*p.Z + T[7],
		Z: T[8]*p.X + T[9]*p.Y + T[10]*p.Z + T[11],
	}
}

// CameraToWorld moves a camera-space point into world space.
func CameraToWorld(p r3.Vec, pose Pose) r3.Vec {
	return ApplyPose(p, PoseMatrix(pose))
}

// Frustum returns a row-major perspective projection for the given
// near-plane bounds, matching glFrustum.
func Frustum(left, right, bottom, top, near, far float64) [16]float64 {
	return [16]float64{
		2 * near / (right - left), 0, (right + left) / (right - left), 0,
		0, 2 * near / (top - bottom), (top + bottom) / (top - bottom), 0,
		0, 0, -(far + near) / (far - near), -2 * far * near / (far - near),
		0, 0, -1, 0,
	}
}

// Projection returns the perspective projection for a field of view.
func Projection(fov FOV, near, far float64) [16]float64 {
	in := IntrinsicsFromFOV(fov, 0, 0, near)
	return Frustum(in.Left, in.Right, in.Bottom, in.Top, near, far)
}

// Projector computes view-projection matrices, reusing its scratch
// matrices between calls. It is not safe for concurrent use.
type Projector struct {
	pose, view, proj, vp *mat.Dense
}

// NewProjector allocates a Projector.
func NewProjector() *Projector {
	return &Projector{
		pose: mat.NewDense(4, 4, nil),
		view: mat.NewDense(4, 4, nil),
		proj: mat.NewDense(4, 4, nil),
		vp:   mat.NewDense(4, 4, nil),
	}
}

// ViewProjection inverts the pose to a view matrix and premultiplies it by
// the frustum projection of fov.
func (pr *Projector) ViewProjection(pose Pose, fov FOV, near, far float64) ([16]float64, error) {
	var out [16]float64

	pm := PoseMatrix(pose)
	proj := Projection(fov, near, far)
	for i := 0; i < 16; i++ {
		pr.pose.Set(i/4, i%4, pm[i])
		pr.proj.Set(i/4, i%4, proj[i])
	}
	if err := pr.view.Inverse(pr.pose); err != nil {
		return out, fmt.Errorf("invert camera pose: %w", err)
	}
	pr.vp.Mul(pr.proj, pr.view)

	for i := 0; i < 16; i++ {
		out[i] = pr.vp.At(i/4, i%4)
	}
	return out, nil
}

// ViewProjection is a convenience wrapper that allocates a Projector.
func ViewProjection(pose Pose, fov FOV, near, far float64) ([16]float64, error) {
	return NewProjector().ViewProjection(pose, fov, near, far)
}
