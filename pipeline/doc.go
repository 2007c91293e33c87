// Package pipeline renders a decoded OSD recording into numbered frames on a
// bounded pool of workers.
//
// Run renders every selected frame in parallel and hands each image to a
// Sink under its output number; completion order is unspecified, the numbers
// restore temporal order. RunOrdered feeds an encoder that needs one image
// per video frame in ascending order.
//
// Both fail fast: the first render or sink error cancels the remaining work
// and partial output is left in place. Cancelling the caller's context stops
// the run between frames and is reported as StatusCancelled, not as an
// error.
package pipeline
