package testutil

import (
	"errors"
	"net/http"
	"testing"
)

func TestAssertStatusCode(t *testing.T) {
	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertStatusCode(t, http.StatusAccepted, http.StatusAccepted)
}

func TestAssertNoError(t *testing.T) {
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	AssertError(t, errors.New("boom"))
}

func TestNewTestRequest(t *testing.T) {
	req := NewTestRequest(http.MethodPost, "/api/export")
	if req.Method != http.MethodPost || req.URL.Path != "/api/export" {
		t.Errorf("unexpected request %s %s", req.Method, req.URL.Path)
	}
	if rec := NewTestRecorder(); rec.Code != http.StatusOK {
		t.Errorf("recorder default code = %d", rec.Code)
	}
}

func TestFlatFrame(t *testing.T) {
	f := FlatFrame(3, 2, 1.5, 0.8)
	if !f.Valid() {
		t.Fatal("flat frame should be valid")
	}
	for i := range f.Depth {
		if f.Depth[i] != 1.5 || f.Confidence[i] != 0.8 {
			t.Fatalf("pixel %d = %v/%v", i, f.Depth[i], f.Confidence[i])
		}
	}
}

func TestViewpoint(t *testing.T) {
	vp := Viewpoint(1, 2, 3)
	if vp.Pose.Position.X != 1 || vp.Pose.Position.Z != 3 {
		t.Errorf("position = %+v", vp.Pose.Position)
	}
	if vp.FOV != CalibratedFOV {
		t.Errorf("FOV = %+v", vp.FOV)
	}
}
