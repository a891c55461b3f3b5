// Package sampling precomputes blue-noise pixel sampling patterns for depth
// frames.
//
// Patterns are generated once by dart throwing inside an ellipse around the
// optical centre and then handed out round-robin, so per-frame cost is a
// slice lookup. Foveated patterns grow their minimum spacing with distance
// from the centre, concentrating samples where the viewer looks.
package sampling
