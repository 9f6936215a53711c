// Package pipeline runs a batch: it expands the caller's inputs, plans one
// job per input, and drives each job through probe, command build, and the
// progress monitor strictly one at a time.
//
// Per-job failures never escape RunBatch; they are recorded in the job's
// Outcome and reported as log events. Every batch ends with a
// BatchFinished event, including an empty or cancelled one.
package pipeline
