// Package render is the consumer side of the point ring.
//
// The accumulator publishes per-frame statistics into a single-slot Mailbox.
// A Mirror keeps a consumer-owned copy of ring storage by draining dirty
// ranges, standing in for a GPU vertex buffer. Publisher streams the same
// updates to remote renderers over gRPC, and DepthPreview turns a depth map
// into a grayscale image scaled by the running maximum depth.
package render
