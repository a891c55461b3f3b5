package geometry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

var calibratedFOV = FOV{Left: -0.95099926, Right: 0.6959626, Up: 0.9175058, Down: -0.9175058}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func vecNear(t *testing.T, got, want r3.Vec, tol float64) {
	t.Helper()
	if !near(got.X, want.X, tol) || !near(got.Y, want.Y, tol) || !near(got.Z, want.Z, tol) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestIdentityRoundTrip(t *testing.T) {
	in := IntrinsicsFromFOV(calibratedFOV, 160, 160, 0.01)

	cam := PixelToCamera(in.Ppx, in.Ppy, 1, in)
	world := CameraToWorld(cam, IdentityPose())

	vecNear(t, world, r3.Vec{X: 0, Y: 0, Z: -1}, 1e-12)
}

func TestIntrinsicsFromFOV(t *testing.T) {
	const n = 0.01
	in := IntrinsicsFromFOV(calibratedFOV, 160, 160, n)

	l, r := math.Tan(calibratedFOV.Left)*n, math.Tan(calibratedFOV.Right)*n
	b, tp := math.Tan(calibratedFOV.Down)*n, math.Tan(calibratedFOV.Up)*n

	if !near(in.Fx, 2*n/(r-l), 1e-12) {
		t.Errorf("Fx = %v", in.Fx)
	}
	if !near(in.Fy, 2*n/(tp-b), 1e-12) {
		t.Errorf("Fy = %v", in.Fy)
	}
	if !near(in.Ppx, -(r+l)/(r-l)*80, 1e-9) {
		t.Errorf("Ppx = %v", in.Ppx)
	}
	// Up and down are symmetric, so the vertical principal offset vanishes.
	if !near(in.Ppy, 0, 1e-9) {
		t.Errorf("Ppy = %v, want 0", in.Ppy)
	}
	if in.Left >= 0 || in.Right <= 0 {
		t.Errorf("unexpected plane signs: left %v right %v", in.Left, in.Right)
	}
}

func TestIntrinsicsFollowFOV(t *testing.T) {
	a := IntrinsicsFromFOV(calibratedFOV, 160, 160, 0.01)
	wider := calibratedFOV
	wider.Right += 0.1
	b := IntrinsicsFromFOV(wider, 160, 160, 0.01)
	if a.Fx == b.Fx || a.Ppx == b.Ppx {
		t.Error("intrinsics should change with the field of view")
	}
}

func TestPixelToCamera_DepthScales(t *testing.T) {
	in := IntrinsicsFromFOV(calibratedFOV, 160, 160, 0.01)
	p1 := PixelToCamera(10, 20, 1, in)
	p3 := PixelToCamera(10, 20, 3, in)
	vecNear(t, p3, r3.Scale(3, p1), 1e-9)
	if p1.Z != -1 {
		t.Errorf("camera looks down -Z, got z=%v", p1.Z)
	}
	vecNear(t, in.Ray(10, 20), p1, 0)
}

func TestPoseMatrixMatchesRotation(t *testing.T) {
	pose := Pose{
		Position:    r3.Vec{X: 1, Y: -2, Z: 0.5},
		Orientation: r3.NewRotation(0.7, r3.Vec{X: 0.3, Y: 1, Z: -0.2}),
	}
	T := PoseMatrix(pose)

	for _, p := range []r3.Vec{{X: 1}, {Y: 1}, {Z: 1}, {X: 0.4, Y: -1.2, Z: 3}} {
		want := r3.Add(pose.Orientation.Rotate(p), pose.Position)
		vecNear(t, ApplyPose(p, T), want, 1e-12)
	}
	if T[12] != 0 || T[13] != 0 || T[14] != 0 || T[15] != 1 {
		t.Errorf("bottom row = %v", T[12:])
	}
}

func TestNewPoseQuaternionOrder(t *testing.T) {
	// 90 degrees about +Y: qy = sin(45), qw = cos(45).
	s := math.Sqrt2 / 2
	pose := NewPose(0, 0, 0, 0, s, 0, s)
	vecNear(t, CameraToWorld(r3.Vec{Z: -1}, pose), r3.Vec{X: -1}, 1e-12)
	vecNear(t, pose.Backward(), r3.Vec{X: 1}, 1e-12)
}

func TestViewProjection(t *testing.T) {
	const n, f = 0.01, 10.0

	t.Run("identity pose equals projection", func(t *testing.T) {
		vp, err := ViewProjection(IdentityPose(), calibratedFOV, n, f)
		if err != nil {
			t.Fatal(err)
		}
		proj := Projection(calibratedFOV, n, f)
		for i := range vp {
			if !near(vp[i], proj[i], 1e-12) {
				t.Fatalf("vp[%d] = %v, want %v", i, vp[i], proj[i])
			}
		}
	})

	t.Run("point ahead of moved camera lands in clip volume", func(t *testing.T) {
		pose := Pose{
			Position:    r3.Vec{X: 2, Y: 1, Z: -3},
			Orientation: r3.NewRotation(math.Pi/3, r3.Vec{Y: 1}),
		}
		pr := NewProjector()
		vp, err := pr.ViewProjection(pose, calibratedFOV, n, f)
		if err != nil {
			t.Fatal(err)
		}
		// A point 2m straight ahead of the camera.
		world := CameraToWorld(r3.Vec{Z: -2}, pose)
		x := vp[0]*world.X + vp[1]*world.Y + vp[2]*world.Z + vp[3]
		y := vp[4]*world.X + vp[5]*world.Y + vp[6]*world.Z + vp[7]
		z := vp[8]*world.X + vp[9]*world.Y + vp[10]*world.Z + vp[11]
		w := vp[12]*world.X + vp[13]*world.Y + vp[14]*world.Z + vp[15]
		if !near(w, 2, 1e-9) {
			t.Fatalf("clip w = %v, want 2", w)
		}
		for _, c := range []float64{x / w, y / w, z / w} {
			if c < -1 || c > 1 {
				t.Errorf("ndc component %v outside [-1,1]", c)
			}
		}
	})
}

func TestDepthFrameValid(t *testing.T) {
	tests := []struct {
		name  string
		frame *DepthFrame
		want  bool
	}{
		{"nil", nil, false},
		{"zero size", &DepthFrame{}, false},
		{"short depth", &DepthFrame{Width: 2, Height: 2, Depth: make([]float32, 3), Confidence: make([]float32, 4)}, false},
		{"missing confidence", &DepthFrame{Width: 2, Height: 2, Depth: make([]float32, 4)}, false},
		{"ok", &DepthFrame{Width: 2, Height: 2, Depth: make([]float32, 4), Confidence: make([]float32, 4)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeConfidence(t *testing.T) {
	got := NormalizeConfidence([]byte{0, 128, 255})
	if got[0] != 0 || got[2] != 1 {
		t.Errorf("endpoints = %v", got)
	}
	if got[1] <= 0.5 || got[1] >= 0.51 {
		t.Errorf("128/255 = %v", got[1])
	}
}

func TestFOVIsZero(t *testing.T) {
	if !(FOV{}).IsZero() {
		t.Error("zero FOV should report IsZero")
	}
	if calibratedFOV.IsZero() {
		t.Error("calibrated FOV should not be zero")
	}
}

func TestFOVDegenerate(t *testing.T) {
	tests := []struct {
		name string
		fov  FOV
		want bool
	}{
		{"calibrated", calibratedFOV, false},
		{"zero", FOV{}, true},
		{"mirrored", FOV{Left: 0.5, Right: -0.5, Up: 0.5, Down: -0.5}, true},
		{"no width", FOV{Left: 0.2, Right: 0.2, Up: 0.5, Down: -0.5}, true},
		{"no height", FOV{Left: -0.5, Right: 0.5, Up: -0.1, Down: -0.1}, true},
		{"nan", FOV{Left: math.NaN(), Right: 0.5, Up: 0.5, Down: -0.5}, true},
		{"off axis", FOV{Left: 0.1, Right: 0.6, Up: -0.1, Down: -0.4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fov.Degenerate(); got != tt.want {
				t.Errorf("Degenerate() = %v, want %v", got, tt.want)
			}
		})
	}
}
