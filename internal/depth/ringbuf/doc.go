// Package ringbuf stores accumulated world points in a fixed-capacity ring.
//
// Points are four float32s (x, y, z, confidence) laid out contiguously so a
// renderer can upload spans of the flat storage directly. Once the ring is
// full the logical count stays at capacity while writes keep overwriting the
// oldest slots. Writers extend a pending dirty range that a consumer drains
// with ConsumeDirtyRange; a range that crosses the end of storage comes back
// as two spans split at the boundary.
//
// Two locks guard a Buffer. The state lock covers cursor, count and the
// dirty range and is held for one point at a time. The data lock guards the
// float storage; readers hold it only while copying out. Lock order is
// state then data.
package ringbuf
