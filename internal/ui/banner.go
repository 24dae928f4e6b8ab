// Package ui provides styled console output for hpn-quill.
package ui

import (
	"fmt"

	"github.com/fatih/color"
)

// Version is printed in the banner.
var Version = "dev"

// PrintBanner displays the ASCII art startup banner.
func PrintBanner() {
	fmt.Fprintln(Output)

	cyan := color.New(color.FgCyan, color.Bold)
	magenta := color.New(color.FgMagenta, color.Bold)
	hiCyan := color.New(color.FgHiCyan)
	white := color.New(color.FgWhite)
	dim := color.New(color.FgHiBlack)

	art := [][2]string{
		{"██╗  ██╗██████╗ ███╗   ██╗", " ██████╗ ██╗   ██╗██╗██╗     ██╗     "},
		{"██║  ██║██╔══██╗████╗  ██║", "██╔═══██╗██║   ██║██║██║     ██║     "},
		{"███████║██████╔╝██╔██╗ ██║", "██║   ██║██║   ██║██║██║     ██║     "},
		{"██╔══██║██╔═══╝ ██║╚██╗██║", "██║▄▄ ██║██║   ██║██║██║     ██║     "},
		{"██║  ██║██║     ██║ ╚████║", "╚██████╔╝╚██████╔╝██║███████╗███████╗"},
		{"╚═╝  ╚═╝╚═╝     ╚═╝  ╚═══╝", " ╚══▀▀═╝  ╚═════╝ ╚═╝╚══════╝╚══════╝"},
	}

	cyan.Fprintln(Output, "╔════════════════════════════════════════════════════════════════════╗")
	for _, line := range art {
		cyan.Fprint(Output, "║  ")
		hiCyan.Fprint(Output, line[0])
		dim.Fprint(Output, "  ")
		magenta.Fprint(Output, line[1])
		cyan.Fprintln(Output, " ║")
	}
	cyan.Fprintln(Output, "╠════════════════════════════════════════════════════════════════════╣")

	cyan.Fprint(Output, "║  ")
	hiCyan.Fprint(Output, "AI CONTINUATION WRITER")
	dim.Fprint(Output, "  │  ")
	white.Fprintf(Output, "%-38s", Version)
	cyan.Fprintln(Output, "║")

	cyan.Fprintln(Output, "╚════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(Output)
}

