// Package ui provides styled console output for hpn-quill.
// It renders request logs, provider status and draft listings with
// colorized badges.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Output receives everything this package prints.
var Output io.Writer = color.Output

var (
	// Badge colors
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	warningBadge = color.New(color.FgYellow, color.Bold)
	errorBadge   = color.New(color.BgRed, color.FgWhite, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)
	debugBadge   = color.New(color.FgMagenta)

	// Text colors
	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	errorText   = color.New(color.FgRed)
	infoText    = color.New(color.FgCyan)
	mutedText   = color.New(color.FgHiBlack)
	accentText  = color.New(color.FgMagenta, color.Bold)
	neonBlue    = color.New(color.FgHiCyan, color.Bold)

	// Method colors
	methodPOST   = color.New(color.BgHiMagenta, color.FgBlack, color.Bold)
	methodGET    = color.New(color.BgHiCyan, color.FgBlack, color.Bold)
	methodPUT    = color.New(color.BgHiYellow, color.FgBlack, color.Bold)
	methodDELETE = color.New(color.BgHiRed, color.FgBlack, color.Bold)
)

// ProviderStatus is one row of the startup provider table.
type ProviderStatus struct {
	Name       string
	Model      string
	Configured bool
	Active     bool
}

// PrintInfo logs general information.
// Format: [QUILL] message
func PrintInfo(msg string) {
	infoBadge.Fprint(Output, "[QUILL]")
	fmt.Fprint(Output, " ")
	infoText.Fprintln(Output, msg)
}

// PrintWarning logs a warning.
func PrintWarning(msg string) {
	warningBadge.Fprint(Output, "[WARN]")
	fmt.Fprint(Output, " ")
	warningText.Fprintln(Output, msg)
}

// PrintFailure shows a classified generation failure.
// Format: [quota_exceeded] message
func PrintFailure(kind, msg string) {
	errorBadge.Fprintf(Output, " %s ", strings.ToUpper(kind))
	fmt.Fprint(Output, " ")
	errorText.Fprintln(Output, msg)
}

// PrintContinuation shows the original text followed by the generated part.
func PrintContinuation(provider, original, continuation string) {
	fmt.Fprint(Output, original)
	accentText.Fprintln(Output, continuation)
	mutedText.Fprintf(Output, "  via %s\n", provider)
}

// PrintDrafts lists saved drafts with their indices.
func PrintDrafts(drafts []string) {
	if len(drafts) == 0 {
		mutedText.Fprintln(Output, "  (no saved drafts)")
		return
	}
	for i, d := range drafts {
		infoBadge.Fprintf(Output, "  [%d] ", i)
		fmt.Fprintln(Output, preview(d, 60))
	}
}

// PrintRequest logs a request with styled output.
// Color-codes status, method, and latency for quick visual parsing.
func PrintRequest(method, path string, status int, latency time.Duration, provider string) {
	mutedText.Fprintf(Output, "%s ", time.Now().Format("15:04:05"))

	printMethodBadge(method)
	fmt.Fprint(Output, " ")

	fmt.Fprintf(Output, "%-34s ", truncatePath(path, 34))

	printStatusBadge(status)
	fmt.Fprint(Output, " ")

	printLatency(latency)

	if provider != "" {
		mutedText.Fprintf(Output, " %s", provider)
	}

	fmt.Fprintln(Output)
}

// printMethodBadge prints the HTTP method with appropriate color.
func printMethodBadge(method string) {
	switch method {
	case "POST":
		methodPOST.Fprintf(Output, " %-6s", method)
	case "GET":
		methodGET.Fprintf(Output, " %-6s", method)
	case "PUT":
		methodPUT.Fprintf(Output, " %-6s", method)
	case "DELETE":
		methodDELETE.Fprintf(Output, " %-6s", method)
	default:
		debugBadge.Fprintf(Output, " %-6s", method)
	}
}

// printStatusBadge prints the status code with appropriate color.
func printStatusBadge(status int) {
	switch {
	case status >= 200 && status < 300:
		successBadge.Fprintf(Output, " %d ", status)
	case status >= 300 && status < 400:
		infoBadge.Fprintf(Output, " %d ", status)
	case status >= 400 && status < 500:
		warningBadge.Fprintf(Output, " %d ", status)
	default:
		errorBadge.Fprintf(Output, " %d ", status)
	}
}

// printLatency prints latency with color gradient.
// Green: < 1s, Yellow: < 5s, Red: >= 5s. Generation calls are slow by nature.
func printLatency(latency time.Duration) {
	ms := latency.Milliseconds()
	latencyStr := fmt.Sprintf("%5dms", ms)

	switch {
	case latency < time.Second:
		successText.Fprint(Output, latencyStr)
	case latency < 5*time.Second:
		warningText.Fprint(Output, latencyStr)
	default:
		errorText.Fprint(Output, latencyStr)
	}
}

// truncatePath truncates a path to maxLen characters.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return path[:maxLen-3] + "..."
}

// preview flattens whitespace and cuts text to maxRunes.
func preview(text string, maxRunes int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= maxRunes {
		return flat
	}
	return string(runes[:maxRunes-1]) + "…"
}

// PrintStartupInfo prints styled server startup information.
func PrintStartupInfo(host string, port int, store string, providers []ProviderStatus) {
	fmt.Fprintln(Output)
	infoBadge.Fprint(Output, "[QUILL]")
	fmt.Fprint(Output, " Server starting on ")
	neonBlue.Fprintf(Output, "http://%s:%d\n", host, port)

	infoBadge.Fprint(Output, "[QUILL]")
	fmt.Fprint(Output, " Draft store: ")
	accentText.Fprintln(Output, store)

	for _, p := range providers {
		marker := "  "
		if p.Active {
			marker = "▸ "
		}
		fmt.Fprint(Output, "  "+marker)
		fmt.Fprintf(Output, "%-10s", p.Name)
		if p.Configured {
			successText.Fprint(Output, "ready   ")
		} else {
			errorText.Fprint(Output, "no key  ")
		}
		mutedText.Fprintln(Output, p.Model)
	}

	fmt.Fprintln(Output)
	printEndpoints()
}

type endpoint struct {
	method, path, desc string
}

var endpoints = []endpoint{
	{"POST", "/api/continue", "One-shot continuation"},
	{"GET", "/api/session", "Session snapshot"},
	{"POST", "/api/session/continue", "Continue session text"},
	{"POST", "/api/session/drafts", "Save draft"},
	{"GET", "/api/providers", "List providers"},
	{"GET", "/health", "Health check"},
}

// printEndpoints prints the main API endpoints.
func printEndpoints() {
	mutedText.Fprintln(Output, "  ┌──────────────────────────────────────────────────────────┐")
	for _, e := range endpoints {
		mutedText.Fprint(Output, "  │ ")
		printMethodBadge(e.method)
		fmt.Fprintf(Output, " %-24s", e.path)
		mutedText.Fprintf(Output, "%-24s", e.desc)
		mutedText.Fprintln(Output, "│")
	}
	mutedText.Fprintln(Output, "  └──────────────────────────────────────────────────────────┘")
	fmt.Fprintln(Output)
}

// PrintShutdown prints a styled shutdown message.
func PrintShutdown() {
	fmt.Fprintln(Output)
	warningBadge.Fprint(Output, "[SHUTDOWN]")
	warningText.Fprintln(Output, " Graceful shutdown initiated...")
}

// PrintGoodbye prints a styled goodbye message.
func PrintGoodbye() {
	successBadge.Fprint(Output, " OK ")
	fmt.Fprint(Output, " ")
	successText.Fprintln(Output, "Server stopped.")
}
