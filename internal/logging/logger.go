// Package logging provides the leveled console logger used by the CLI,
// with an optional append-mode log file that always receives plain text.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-colorable"

	"github.com/backmassage/lomux/internal/config"
	"github.com/backmassage/lomux/internal/term"
)

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	mu       sync.Mutex
	verbose  bool
	stdout   io.Writer
	stderr   io.Writer
	file     *os.File
	filePath string
	now      func() time.Time

	// beforeWrite runs under mu before every console write; the progress
	// renderer uses it to clear its inline status line.
	beforeWrite func(io.Writer)
}

// NewLogger configures terminal colors from cfg and optionally opens
// cfg.LogFile. Call Close() when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	l := &Logger{
		verbose: cfg.Verbose,
		stdout:  colorable.NewColorableStdout(),
		stderr:  colorable.NewColorableStderr(),
		now:     time.Now,
	}

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		l.file = f
		l.filePath = cfg.LogFile
	}
	return l, nil
}

// Verbose reports whether DEBUG and engine output reach the console.
func (l *Logger) Verbose() bool { return l.verbose }

// Stdout returns the console writer. Writes through it must hold the
// lock taken by WithConsole.
func (l *Logger) Stdout() io.Writer { return l.stdout }

// WithConsole runs f while holding the logger lock so inline output does
// not interleave with log lines.
func (l *Logger) WithConsole(f func(w io.Writer)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f(l.stdout)
}

// SetBeforeWrite installs a hook run before each console line.
func (l *Logger) SetBeforeWrite(f func(io.Writer)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.beforeWrite = f
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// line writes one entry. console=false sends it to the log file only.
func (l *Logger) line(level, color, text string, console bool) {
	ts := l.now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	plain := ts + " [" + level + "] " + text + "\n"
	if console {
		out := l.stdout
		if level == "ERROR" {
			out = l.stderr
		}
		if l.beforeWrite != nil {
			l.beforeWrite(l.stdout)
		}
		if color != "" {
			_, _ = io.WriteString(out, ts+" "+color+"["+level+"]"+term.NC+" "+text+"\n")
		} else {
			_, _ = io.WriteString(out, plain)
		}
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line("INFO", term.Blue, fmt.Sprintf(format, args...), true)
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.line("SUCCESS", term.Green, fmt.Sprintf(format, args...), true)
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line("WARN", term.Yellow, fmt.Sprintf(format, args...), true)
}

// Error logs at ERROR level (red), also to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line("ERROR", term.Red, fmt.Sprintf(format, args...), true)
}

// Render logs one engine output line at RENDER level (magenta). It reaches
// the console only in verbose mode but is always written to the log file,
// so the file keeps every line in arrival order.
func (l *Logger) Render(text string) {
	l.line("RENDER", term.Magenta, text, l.verbose)
}

// Debug logs at DEBUG level (cyan) only when verbose; no-op otherwise.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.line("DEBUG", term.Cyan, fmt.Sprintf(format, args...), true)
}
