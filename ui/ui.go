// Package ui prints colored terminal summaries.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Brand colors
var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Info   = color.New(color.FgCyan)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// Banner prints the notegraph banner.
func Banner(w io.Writer, subtitle string) {
	fmt.Fprintf(w, "%s - %s\n\n", Brand.Sprint("notegraph"), subtitle)
}

// Field prints one aligned "name  value" line.
func Field(w io.Writer, name string, value any) {
	fmt.Fprintf(w, "  %s  %v\n", Brand.Sprintf("%-12s", name), value)
}

// StatusIcon returns a status icon string.
func StatusIcon(ok bool) string {
	if ok {
		return Good.Sprint("✓")
	}
	return Bad.Sprint("✗")
}
