// Package planner turns one input path plus the batch-wide preset and
// parameters into an immutable Job that the ffmpeg package consumes.
package planner
