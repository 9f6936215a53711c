// Package engine resolves the external ffmpeg and ffprobe executables.
//
// Resolution order for each binary: the process PATH first, then a bundled
// copy under <bundleDir>/<windows|mac|linux>/<name>[.exe]. A missing engine
// is fatal to the application; Locate is meant to be called once per binary
// at startup.
package engine

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Names of the two required executables.
const (
	FFmpeg  = "ffmpeg"
	FFprobe = "ffprobe"
)

// ErrEngineNotFound is wrapped by every NotFoundError.
var ErrEngineNotFound = errors.New("engine not found")

// NotFoundError reports which binary could not be resolved and where the
// bundled fallback was expected.
type NotFoundError struct {
	Name    string
	Bundled string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%q not found on PATH or in %s", e.Name, e.Bundled)
}

// Unwrap lets callers test with errors.Is(err, ErrEngineNotFound).
func (e *NotFoundError) Unwrap() error { return ErrEngineNotFound }

// Paths holds the resolved executables.
type Paths struct {
	FFmpeg  string
	FFprobe string
}

// Locator resolves engines. The zero value is not usable; call NewLocator.
type Locator struct {
	bundleDir string
	goos      string
	lookPath  func(string) (string, error)
	stat      func(string) (os.FileInfo, error)
}

// NewLocator returns a Locator that falls back to bundleDir. When bundleDir
// is empty, "bin" next to the running executable is used.
func NewLocator(bundleDir string) *Locator {
	if bundleDir == "" {
		bundleDir = DefaultBundleDir()
	}
	return &Locator{
		bundleDir: bundleDir,
		goos:      runtime.GOOS,
		lookPath:  exec.LookPath,
		stat:      os.Stat,
	}
}

// DefaultBundleDir returns <dir of executable>/bin, or "bin" when the
// executable path cannot be determined.
func DefaultBundleDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "bin"
	}
	return filepath.Join(filepath.Dir(exe), "bin")
}

// Locate returns the path to name, searching PATH then the bundle.
func (l *Locator) Locate(name string) (string, error) {
	if p, err := l.lookPath(name); err == nil {
		return p, nil
	}

	bundled := l.BundledPath(name)
	fi, err := l.stat(bundled)
	if err != nil || fi.IsDir() || !l.executable(fi) {
		return "", &NotFoundError{Name: name, Bundled: bundled}
	}
	return bundled, nil
}

// LocateAll resolves both ffmpeg and ffprobe, failing on the first miss.
func (l *Locator) LocateAll() (Paths, error) {
	ff, err := l.Locate(FFmpeg)
	if err != nil {
		return Paths{}, err
	}
	fp, err := l.Locate(FFprobe)
	if err != nil {
		return Paths{}, err
	}
	return Paths{FFmpeg: ff, FFprobe: fp}, nil
}

// BundledPath returns the fallback location for name on this platform.
func (l *Locator) BundledPath(name string) string {
	if l.goos == "windows" {
		name += ".exe"
	}
	return filepath.Join(l.bundleDir, platformDir(l.goos), name)
}

// executable reports whether any execute bit is set. Windows has no execute
// bits, so existence is enough there.
func (l *Locator) executable(fi os.FileInfo) bool {
	if l.goos == "windows" {
		return true
	}
	return fi.Mode().Perm()&0o111 != 0
}

// platformDir maps GOOS onto one of the three bundle subdirectories.
func platformDir(goos string) string {
	switch goos {
	case "windows":
		return "windows"
	case "darwin":
		return "mac"
	default:
		return "linux"
	}
}
