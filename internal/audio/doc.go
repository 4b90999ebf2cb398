// Package audio adapts decoded PCM bytes to samples and provides the output
// buffer the encoder writes into.
//
// Decoded PCM is mono, signed 16-bit little-endian. [ToSamples] is the only
// place bytes become samples; it never resamples or remixes. [Buffer] models
// "reserve once, let the callee fill spare capacity, commit what it reports"
// so the encode and flush steps never copy or resize.
package audio
