// Package motion decides whether the camera has moved enough since the last
// captured frame to be worth sampling again.
package motion

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/geometry"
)

// Default thresholds.
const (
	DefaultMinDistance = 0.10
	DefaultMinAngle    = 10 * math.Pi / 180
)

// Gate triggers when the camera has translated more than MinDistance or
// turned by more than MinAngle since the last trigger. The stored pose
// starts zeroed so the first call always triggers.
//
// A Gate is not safe for concurrent use; it belongs to the accumulation
// goroutine.
type Gate struct {
	minDistance float64
	minCosine   float64

	position r3.Vec
	backward r3.Vec
}

// NewGate returns a gate with the given thresholds; minAngle is in radians.
func NewGate(minDistance, minAngle float64) *Gate {
	return &Gate{
		minDistance: minDistance,
		minCosine:   math.Cos(minAngle),
	}
}

// NewDefaultGate returns a gate with 0.10 units and 10 degrees.
func NewDefaultGate() *Gate {
	return NewGate(DefaultMinDistance, DefaultMinAngle)
}

// ShouldSample reports whether pose differs enough from the last captured
// pose, and if so records it as the new reference.
func (g *Gate) ShouldSample(pose geometry.Pose) bool {
	position := pose.Position
	backward := pose.Backward()

	moved := r3.Norm(r3.Sub(position, g.position)) > g.minDistance
	turned := r3.Dot(backward, g.backward) < g.minCosine
	if !moved && !turned {
		return false
	}
	g.position = position
	g.backward = backward
	return true
}

// Reset returns the gate to its never-captured state.
func (g *Gate) Reset() {
	g.position = r3.Vec{}
	g.backward = r3.Vec{}
}
