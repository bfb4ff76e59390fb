package decode

import (
	"time"

	"github.com/logshape/logshape/grammar"
)

// truncationMarker is appended to any payload shortened by truncation.
const truncationMarker = "..."

// Assembler builds normalized records from capture mappings according to the
// instance configuration. One assembler serves one decoder and is immutable
// after construction.
type Assembler struct {
	opts Options
}

// NewAssembler returns an assembler for the given options.
func NewAssembler(opts Options) *Assembler {
	return &Assembler{opts: opts}
}

// Options returns the instance configuration.
func (a *Assembler) Options() Options { return a.opts }

// New returns a fresh record carrying only the configured type label.
// Every line starts from a clean record so that optional fields can never
// leak values across matches.
func (a *Assembler) New() *Record {
	return &Record{
		Type:   a.opts.Type,
		Fields: make(map[string]any),
	}
}

// CopyFields copies captures into the record's field mapping, applying the
// rename table and dropping every capture named in drop. Internal helper
// captures (timestamp components and the like) belong in drop; they are
// never exposed downstream.
func (a *Assembler) CopyFields(r *Record, caps grammar.Captures, rename map[string]string, drop ...string) {
	dropped := make(map[string]bool, len(drop))
	for _, name := range drop {
		dropped[name] = true
	}
	for name, value := range caps {
		if dropped[name] {
			continue
		}
		if to, ok := rename[name]; ok {
			name = to
		}
		r.Fields[name] = value
	}
}

// StartTime applies the log-start adjustment: for formats that log a finish
// timestamp plus an elapsed duration, it returns the time the operation
// started. When the adjustment is disabled by configuration the raw finish
// time is returned unmodified.
func (a *Assembler) StartTime(finish time.Time, elapsed time.Duration) time.Time {
	if !a.opts.LogQueryStart {
		return finish
	}
	return finish.Add(-elapsed)
}

// SetPayload stores the payload, truncated per the configured byte limit.
func (a *Assembler) SetPayload(r *Record, payload string) {
	if a.opts.Truncate != nil {
		payload = Truncate(payload, *a.opts.Truncate)
	}
	r.Payload = payload
}

// Truncate shortens s to the configured byte limit and appends the
// truncation marker. A positive limit keeps the first limit bytes; a
// negative limit drops the last |limit| bytes. Truncation operates on raw
// bytes, not decoded characters, and may split a multi-byte character; this
// is an accepted trade-off for speed. Strings already within the limit are
// returned unchanged with no marker.
func Truncate(s string, limit int) string {
	n := limit
	if n < 0 {
		n = -n
	}
	if len(s) <= n {
		return s
	}
	if limit > 0 {
		return s[:limit] + truncationMarker
	}
	return s[:len(s)+limit] + truncationMarker
}
