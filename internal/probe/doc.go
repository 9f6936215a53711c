// Package probe reads container-level metadata with ffprobe.
//
// Only the format duration is requested. Duration drives the progress
// percentage and nothing else, so every failure degrades to 0 ("unknown")
// instead of an error.
package probe
