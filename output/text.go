package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/logshape/logshape/decode"
)

// severityNames index syslog levels for display.
var severityNames = [...]string{
	"emerg", "alert", "crit", "error", "warn", "notice", "info", "debug",
}

// TextSink renders records as aligned single-line summaries for terminals.
// The payload column adapts to the terminal width, defaulting to 120
// columns when stdout is not a terminal.
type TextSink struct {
	w            io.Writer
	payloadWidth int
}

// NewTextSink writes human-readable output to w.
func NewTextSink(w io.Writer) *TextSink {
	width := 120
	if tw, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = tw
	}
	// Allocate roughly half the terminal for the payload.
	payloadWidth := width / 2
	if payloadWidth < 40 {
		payloadWidth = 40
	}
	return &TextSink{w: w, payloadWidth: payloadWidth}
}

// Write implements Sink.
func (s *TextSink) Write(r *decode.Record) error {
	ts := "-"
	if !r.Timestamp.IsZero() {
		ts = r.Timestamp.Format("2006-01-02 15:04:05.000 MST")
	}

	sev := "-"
	if r.Severity != nil && *r.Severity >= 0 && *r.Severity < len(severityNames) {
		sev = severityNames[*r.Severity]
	}

	payload := r.Payload
	if len(payload) > s.payloadWidth {
		payload = payload[:s.payloadWidth] + "…"
	}
	payload = strings.ReplaceAll(payload, "\n", " ")

	_, err := fmt.Fprintf(s.w, "%-27s %-6s %s%s\n", ts, sev, payload, formatFields(r))
	return err
}

// Close implements Sink.
func (s *TextSink) Close() error { return nil }

// formatFields renders the field mapping as sorted key=value pairs.
func formatFields(r *decode.Record) string {
	if len(r.Fields) == 0 && r.PID == nil && r.Hostname == "" {
		return ""
	}

	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	if r.PID != nil {
		fmt.Fprintf(&b, " pid=%d", *r.PID)
	}
	if r.Hostname != "" {
		fmt.Fprintf(&b, " host=%s", r.Hostname)
	}
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, r.Fields[name])
	}
	return b.String()
}
