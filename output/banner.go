package output

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
)

// PrintBanner displays the tool logo and version information.
func PrintBanner(w io.Writer, version, commit string) {
	if w == nil {
		return
	}
	fmt.Fprintln(w, GetASCIILogo())
	fmt.Fprintf(w, "bril-ssa v%s (%s)\n", version, commit)
	fmt.Fprintln(w)
}

// GetASCIILogo generates the ASCII art logo.
func GetASCIILogo() string {
	// "standard" font keeps the output compact
	fig := figure.NewFigure("bril-ssa", "standard", true)
	return fig.String()
}
