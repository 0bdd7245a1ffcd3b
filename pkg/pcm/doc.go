// ABOUTME: Package documentation for pcm
// ABOUTME: Raw PCM format description and byte-level processing

// Package pcm describes raw PCM audio streams and provides the
// byte-level processing every other package builds on: frame math,
// sample conversion, and correction of the fixed capture transient.
//
// A Format pins down sample rate, bit depth, channel count, signedness,
// and byte order. All buffers exchanged between packages are raw
// interleaved PCM in some Format, with lengths divisible by the frame
// size.
package pcm
