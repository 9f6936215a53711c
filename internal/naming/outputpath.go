package naming

import (
	"path/filepath"
	"strings"

	"github.com/backmassage/lomux/internal/preset"
)

// OutputPath returns <outputDir>/<stem>_<preset>.<ext> for input.
func OutputPath(input, outputDir string, p preset.Preset) string {
	return filepath.Join(outputDir, Stem(input)+"_"+strings.ToLower(p.String())+"."+p.Extension())
}

// Stem returns the base name of path without its final extension. Dot
// files such as ".hidden" keep their full name.
func Stem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}
