// ABOUTME: Package documentation for clip
// ABOUTME: Playable in-memory PCM audio objects

// Package clip provides the playable unit of audio: an immutable PCM
// byte buffer plus its format, bound lazily to a device output line.
//
// Playback is fire-and-forget. Play returns immediately and the payload
// is written to the device on a background goroutine; callers observe
// completion by polling IsPlaying. There is deliberately no completion
// callback, matching the polling model of the playback pool's
// reclamation task.
package clip
