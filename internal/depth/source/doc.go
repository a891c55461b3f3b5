// Package source produces depth frames for the recorder: a synthetic room
// scan for development and tests, and gzip+gob recordings that can be
// replayed later.
//
// Every source implements Source and delivers frames on a channel until its
// context ends. The accumulation goroutine is the only receiver.
package source
