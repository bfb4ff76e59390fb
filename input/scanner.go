package input

import (
	"bufio"
	"io"
	"strings"
)

// Buffer size constants for the line scanner.
const (
	// scannerBuffer is the initial buffer size for reading log lines (4 MB)
	scannerBuffer = 4 * 1024 * 1024

	// scannerMaxBuffer is the maximum buffer size for very long log lines (100 MB)
	scannerMaxBuffer = 100 * 1024 * 1024
)

// StartFunc reports whether line opens a new multi-line record given the
// text buffered for the current one. A nil StartFunc makes every line a
// record of its own.
type StartFunc func(line, buffered string) bool

// Stream reads r line by line and sends complete records to out. Formats
// with multi-line entries (slow-query logs) supply a StartFunc; their lines
// are accumulated until the next record boundary, joined with newlines.
// The channel is not closed; the caller owns its lifecycle.
func Stream(r io.Reader, start StartFunc, out chan<- string) error {
	scanner := bufio.NewScanner(r)

	// Large buffers handle long entries such as statement lines carrying
	// whole queries.
	buf := make([]byte, scannerBuffer)
	scanner.Buffer(buf, scannerMaxBuffer)

	if start == nil {
		for scanner.Scan() {
			out <- scanner.Text()
		}
		return scanner.Err()
	}

	var current strings.Builder
	began := false

	for scanner.Scan() {
		line := scanner.Text()
		if began && start(line, current.String()) {
			out <- current.String()
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
		began = true
	}
	if began {
		out <- current.String()
	}

	return scanner.Err()
}
