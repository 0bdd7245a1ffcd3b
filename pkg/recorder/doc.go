// ABOUTME: Package documentation for recorder
// ABOUTME: Single-session hardware capture into an in-memory buffer

// Package recorder captures raw PCM off a hardware input line into a
// growable in-memory buffer.
//
// Capture runs on a background goroutine that races the device buffer:
// it loops fixed-size reads into the accumulator until the line reports
// end of stream or the session is stopped. Stopping is flag-driven, so
// it takes effect on the next chunk boundary rather than instantly.
package recorder
