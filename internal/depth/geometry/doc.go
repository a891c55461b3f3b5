// Package geometry holds the camera model of the depth pipeline.
//
// It derives per-frame pinhole intrinsics from the four tangent-space
// field-of-view angles a viewpoint reports, lifts depth pixels into camera
// space (the camera looks down -Z), and moves camera-space points into the
// world with the viewpoint pose. Transforms are row-major [16]float64, the
// same layout ApplyPose consumes.
package geometry
