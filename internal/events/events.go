// Package events defines the messages the batch pipeline emits for an
// observer (console, UI, WebSocket clients) and the sinks that carry them.
//
// Emitters call Sink.Emit synchronously from the worker goroutine, so
// events reach a sink in exactly the order they were produced.
package events

import (
	"fmt"
	"time"
)

// Kind classifies an Event.
type Kind string

const (
	KindLog           Kind = "log"
	KindProgress      Kind = "progress"
	KindJobStarted    Kind = "job_started"
	KindJobFinished   Kind = "job_finished"
	KindBatchFinished Kind = "batch_finished"
)

// Event is one message in a batch's event stream. Fields not relevant to
// Kind are left zero.
type Event struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	BatchID   string    `json:"batchId,omitempty"`
	JobID     string    `json:"jobId,omitempty"`
	Kind      Kind      `json:"kind"`

	// KindLog. Source is SourceEngine for raw engine output and empty for
	// the pipeline's own messages.
	Text   string `json:"text,omitempty"`
	Source string `json:"source,omitempty"`

	// KindProgress.
	Percent float64 `json:"percent,omitempty"`
	Label   string  `json:"label,omitempty"`

	// KindJobStarted / KindJobFinished.
	Index  int    `json:"index,omitempty"`
	Total  int    `json:"total,omitempty"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
}

// SourceEngine marks log events that are raw engine output.
const SourceEngine = "engine"

// LogLine returns a log event carrying text verbatim.
func LogLine(text string) Event {
	return Event{Kind: KindLog, Text: text}
}

// EngineLine returns a log event for one line of engine output.
func EngineLine(text string) Event {
	return Event{Kind: KindLog, Text: text, Source: SourceEngine}
}

// IsEngine reports whether e is raw engine output.
func (e Event) IsEngine() bool { return e.Kind == KindLog && e.Source == SourceEngine }

// Progress returns a progress event. percent is expected in [0, 100].
func Progress(percent float64, label string) Event {
	return Event{Kind: KindProgress, Percent: percent, Label: label}
}

// JobStarted announces job index (1-based) of total.
func JobStarted(index, total int, name string) Event {
	return Event{Kind: KindJobStarted, Index: index, Total: total, Name: name}
}

// JobFinished announces the terminal status of a job.
func JobFinished(index, total int, name, status string) Event {
	return Event{Kind: KindJobFinished, Index: index, Total: total, Name: name, Status: status}
}

// BatchFinished is the last event of every batch.
func BatchFinished() Event {
	return Event{Kind: KindBatchFinished}
}

// String renders the event for debugging and plain-text logs.
func (e Event) String() string {
	switch e.Kind {
	case KindLog:
		return e.Text
	case KindProgress:
		return fmt.Sprintf("[%5.1f%%] %s", e.Percent, e.Label)
	case KindJobStarted:
		return fmt.Sprintf("started %d/%d %s", e.Index, e.Total, e.Name)
	case KindJobFinished:
		return fmt.Sprintf("finished %d/%d %s (%s)", e.Index, e.Total, e.Name, e.Status)
	case KindBatchFinished:
		return "batch finished"
	default:
		return string(e.Kind)
	}
}
