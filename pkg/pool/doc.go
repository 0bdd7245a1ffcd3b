// ABOUTME: Package documentation for pool
// ABOUTME: Concurrent playback registry with background reclamation

// Package pool multiplexes playback across any number of concurrently
// active clips, each addressed by an integer handle.
//
// Submitted clips are copied, so the same source clip can play several
// times at once as distinct instances. A background task periodically
// reclaims finished playbacks from the active set, polling faster the
// more clips are active; paused clips are never reclaimed. Operations on
// unknown handles are logged no-ops so bulk control over many handles
// never aborts on a stale one.
package pool
