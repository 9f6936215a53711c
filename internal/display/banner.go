package display

import (
	"fmt"
	"io"

	"github.com/backmassage/lomux/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, ` _
| | ___  _ __ ___  _   ___  __
| |/ _ \| '_ `+"`"+` _ \| | | \ \/ /
| | (_) | | | | | | |_| |>  <
|_|\___/|_| |_| |_|\__,_/_/\_\
`)
	if term.Enabled() {
		fmt.Fprintln(w, term.NC)
	}
}
