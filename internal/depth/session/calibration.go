package session

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/geometry"
)

// ErrEnvironmentMismatch matches every *EnvironmentMismatchError.
var ErrEnvironmentMismatch = errors.New("environment mismatch")

// EnvironmentMismatchError reports a frame whose geometry differs from the
// calibration the session was built for.
type EnvironmentMismatchError struct {
	Field    string
	Expected float64
	Actual   float64
}

func (e *EnvironmentMismatchError) Error() string {
	return fmt.Sprintf("environment mismatch: %s is %g, calibrated for %g", e.Field, e.Actual, e.Expected)
}

// Is reports whether target is ErrEnvironmentMismatch.
func (e *EnvironmentMismatchError) Is(target error) bool {
	return target == ErrEnvironmentMismatch
}

// fovTolerance absorbs float32 round trips of the reported angles.
const fovTolerance = 1e-5

// Calibration is the depth resolution and field of view the sampling
// patterns were generated for.
type Calibration struct {
	Width, Height int
	FOV           geometry.FOV
}

// Ready reports whether a frame carries enough information to be checked:
// non-zero dimensions and a non-zero field of view.
func Ready(depth *geometry.DepthFrame, fov geometry.FOV) bool {
	return depth != nil && depth.Width > 0 && depth.Height > 0 && !fov.IsZero()
}

// Validate compares a frame against the calibration and returns the first
// differing value as an *EnvironmentMismatchError.
func (c Calibration) Validate(depth *geometry.DepthFrame, fov geometry.FOV) error {
	if depth == nil {
		return &EnvironmentMismatchError{Field: "width", Expected: float64(c.Width)}
	}
	if depth.Width != c.Width {
		return &EnvironmentMismatchError{Field: "width", Expected: float64(c.Width), Actual: float64(depth.Width)}
	}
	if depth.Height != c.Height {
		return &EnvironmentMismatchError{Field: "height", Expected: float64(c.Height), Actual: float64(depth.Height)}
	}
	angles := []struct {
		field            string
		expected, actual float64
	}{
		{"fov.left", c.FOV.Left, fov.Left},
		{"fov.right", c.FOV.Right, fov.Right},
		{"fov.up", c.FOV.Up, fov.Up},
		{"fov.down", c.FOV.Down, fov.Down},
	}
	for _, a := range angles {
		if math.Abs(a.expected-a.actual) > fovTolerance {
			return &EnvironmentMismatchError{Field: a.field, Expected: a.expected, Actual: a.actual}
		}
	}
	return nil
}
