// Package ffmpeg builds engine command lines and runs them while turning the
// engine's -progress stream into events.
//
// Build is a pure function of a planner.Job. Monitor.Run launches the
// engine with stdout and stderr merged into one pipe, reads it a line at a
// time through Lines, forwards every line as a log event, derives a
// percentage from out_time_us/out_time_ms when the source duration is known,
// and stops at the "progress=end" sentinel. It always waits for the process
// to exit before returning.
package ffmpeg
