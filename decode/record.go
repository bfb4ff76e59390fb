// Package decode defines the normalized record model produced by every log
// format, the decoder interface, and the shared extraction helpers (record
// assembly, suffix-anchored field extraction, delimited splitting).
package decode

import (
	"errors"
	"time"
)

// ErrNoMatch reports that a line does not conform to the decoder's format.
// This is a normal outcome, not an exceptional one: the host counts it and
// moves to the next line. Value-conversion failures inside a grammar are
// folded into the same error.
var ErrNoMatch = errors.New("line does not match format")

// Record is the normalized output unit shared by all formats.
//
// Optional fields use pointers so that "absent" and "zero" stay distinct in
// the emitted JSON: severity 0 (emergency) is meaningful. A Record is built
// fresh for every successfully matched line; a field a match does not set can
// never retain a value from a previous line.
type Record struct {
	// Timestamp is the absolute instant of the event at nanosecond
	// resolution. The zero value means unset.
	Timestamp time.Time `json:"timestamp,omitzero" parquet:"timestamp,optional"`

	// Type is the configured record label, constant per decoder instance.
	Type string `json:"type,omitempty" parquet:"type,optional"`

	// Severity is a syslog-style level, 0..7, lower is more severe.
	Severity *int `json:"severity,omitempty" parquet:"severity,optional"`

	// PID is the process id of the logging process, when the format
	// encodes one.
	PID *int `json:"process_id,omitempty" parquet:"process_id,optional"`

	// Hostname is rarely populated; most formats have no way to recover it.
	Hostname string `json:"hostname,omitempty" parquet:"hostname,optional"`

	// Payload holds residual free text not captured into named fields.
	Payload string `json:"payload,omitempty" parquet:"payload,optional"`

	// Fields maps field names to number or string values. Absent fields
	// are omitted, never present with a null value.
	Fields map[string]any `json:"fields,omitempty" parquet:"-"`
}

// SetTimestamp sets the record timestamp once. A timestamp already set is
// immutable for the life of the record.
func (r *Record) SetTimestamp(t time.Time) {
	if r.Timestamp.IsZero() {
		r.Timestamp = t
	}
}

// SetSeverity stores a syslog-style level.
func (r *Record) SetSeverity(level int) {
	r.Severity = &level
}

// SetPID stores the process id.
func (r *Record) SetPID(pid int) {
	r.PID = &pid
}

// Decoder is a configured format decoder. Decode matches one raw line (or
// one upstream-delimited record for multi-line formats) and returns the
// assembled record, or an error wrapping ErrNoMatch when the input does not
// conform. Decode never returns a partial record.
type Decoder interface {
	Decode(line string) (*Record, error)
}
