// Package testutil provides shared test helpers and depth fixtures.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/geometry"
)

// CalibratedFOV is the field of view of the reference depth sensor.
var CalibratedFOV = geometry.FOV{
	Left:  -0.95099926,
	Right: 0.6959626,
	Up:    0.9175058,
	Down:  -0.9175058,
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// FlatFrame returns a width x height frame with every pixel at the given
// depth and confidence.
func FlatFrame(width, height int, depth, confidence float32) *geometry.DepthFrame {
	f := &geometry.DepthFrame{
		Width:      width,
		Height:     height,
		Depth:      make([]float32, width*height),
		Confidence: make([]float32, width*height),
	}
	for i := range f.Depth {
		f.Depth[i] = depth
		f.Confidence[i] = confidence
	}
	return f
}

// Viewpoint returns a calibrated viewpoint at the given position with no
// rotation.
func Viewpoint(x, y, z float64) geometry.Viewpoint {
	pose := geometry.IdentityPose()
	pose.Position.X, pose.Position.Y, pose.Position.Z = x, y, z
	return geometry.Viewpoint{Pose: pose, FOV: CalibratedFOV}
}
