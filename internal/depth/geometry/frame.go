package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DepthFrame is one tick of the depth sensor. Depth is linear distance along
// the camera's forward axis in metres, row-major; values <= 0 are invalid.
// Confidence is normalised to [0,1] with the same layout.
type DepthFrame struct {
	Width      int
	Height     int
	Depth      []float32
	Confidence []float32
}

// Valid reports whether the frame has non-zero dimensions and both planes
// hold exactly Width*Height values.
func (f *DepthFrame) Valid() bool {
	if f == nil || f.Width <= 0 || f.Height <= 0 {
		return false
	}
	n := f.Width * f.Height
	return len(f.Depth) == n && len(f.Confidence) == n
}

// NormalizeConfidence converts raw sensor confidence bytes to [0,1].
func NormalizeConfidence(raw []byte) []float32 {
	out := make([]float32, len(raw))
	for i, b := range raw {
		out[i] = float32(b) / 255
	}
	return out
}

// FOV is a field of view as four signed tangent-space angles in radians.
// Left and Down are normally negative.
type FOV struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
	Up    float64 `json:"up"`
	Down  float64 `json:"down"`
}

// IsZero reports whether no angle has been set.
func (f FOV) IsZero() bool {
	return f == FOV{}
}

// Degenerate reports whether f cannot describe a frustum: unset, non-finite,
// or with right not past left or up not past down in tangent space.
func (f FOV) Degenerate() bool {
	if f.IsZero() {
		return true
	}
	l, r := math.Tan(f.Left), math.Tan(f.Right)
	u, d := math.Tan(f.Up), math.Tan(f.Down)
	for _, v := range []float64{l, r, u, d} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return r <= l || u <= d
}

// Pose is a rigid camera pose: translation plus unit-quaternion rotation.
type Pose struct {
	Position    r3.Vec
	Orientation r3.Rotation
}

// IdentityPose returns the pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Orientation: r3.Rotation{Real: 1}}
}

// NewPose builds a pose from a translation and an (x, y, z, w) quaternion.
func NewPose(tx, ty, tz, qx, qy, qz, qw float64) Pose {
	return Pose{
		Position:    r3.Vec{X: tx, Y: ty, Z: tz},
		Orientation: r3.Rotation{Real: qw, Imag: qx, Jmag: qy, Kmag: qz},
	}
}

// Backward is the camera's +Z axis in world space, the direction opposite
// to where it looks.
func (p Pose) Backward() r3.Vec {
	return p.Orientation.Rotate(r3.Vec{Z: 1})
}

// Viewpoint is the camera state reported alongside a depth frame.
type Viewpoint struct {
	Pose Pose
	FOV  FOV
}
