package display

import (
	"fmt"
	"io"

	"github.com/backmassage/lomux/internal/events"
	"github.com/backmassage/lomux/internal/term"
)

// Logger is the subset of *logging.Logger the display functions need.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Render(string)
}

// ConsoleLogger is a Logger that also coordinates raw console writes.
type ConsoleLogger interface {
	Logger
	WithConsole(func(io.Writer))
	SetBeforeWrite(func(io.Writer))
}

const (
	barWidth     = 20
	maxLabelRune = 40
	plainStep    = 25 // Percent between progress lines when not on a TTY.
)

// Console renders batch events through the logger. On a TTY progress is an
// inline status line redrawn in place; otherwise it is logged in coarse
// steps so piped output stays readable.
type Console struct {
	log ConsoleLogger
	tty bool

	inline   bool // Guarded by the logger lock.
	lastStep int
}

// NewConsole returns a Console writing through log.
func NewConsole(log ConsoleLogger, tty bool) *Console {
	c := &Console{log: log, tty: tty}
	if tty {
		log.SetBeforeWrite(c.clear)
	}
	return c
}

// Emit implements events.Sink.
func (c *Console) Emit(e events.Event) {
	switch e.Kind {
	case events.KindLog:
		if e.IsEngine() {
			c.log.Render(e.Text)
		} else {
			c.log.Info("%s", e.Text)
		}

	case events.KindProgress:
		c.progress(e)

	case events.KindJobStarted:
		c.lastStep = 0
		c.log.Info("[%d/%d] %s", e.Index, e.Total, e.Name)

	case events.KindJobFinished:
		switch e.Status {
		case "succeeded":
			c.log.Success("[%d/%d] %s converted", e.Index, e.Total, e.Name)
		case "failed":
			c.log.Error("[%d/%d] %s failed", e.Index, e.Total, e.Name)
		default:
			c.log.Warn("[%d/%d] %s %s", e.Index, e.Total, e.Name, e.Status)
		}

	case events.KindBatchFinished:
		c.log.WithConsole(c.clear)
	}
}

func (c *Console) progress(e events.Event) {
	if c.tty {
		line := fmt.Sprintf("  %s %5.1f%% %s",
			term.Bar(e.Percent, barWidth), e.Percent, term.Truncate(e.Label, maxLabelRune))
		c.log.WithConsole(func(w io.Writer) {
			_, _ = io.WriteString(w, term.StatusLine(line))
			c.inline = true
		})
		return
	}

	// 0% and 100% coincide with the started/finished lines.
	if e.Percent <= 0 || e.Percent >= 100 {
		return
	}
	step := int(e.Percent) / plainStep
	if step <= c.lastStep {
		return
	}
	c.lastStep = step
	c.log.Info("  %s", e.Label)
}

// clear erases the inline status line. Callers hold the logger lock.
func (c *Console) clear(w io.Writer) {
	if !c.inline {
		return
	}
	_, _ = io.WriteString(w, term.ClearLine())
	c.inline = false
}
