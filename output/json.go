// Package output implements the record sinks the CLI emits decoded records
// through: newline-delimited JSON, aligned text for terminals, and Parquet
// for downstream batch processing.
package output

import (
	"encoding/json"
	"io"

	"github.com/logshape/logshape/decode"
)

// Sink consumes decoded records. Write is called once per successfully
// matched line; Close flushes whatever the sink buffers.
type Sink interface {
	Write(r *decode.Record) error
	Close() error
}

// JSONSink emits one JSON object per record, newline delimited.
type JSONSink struct {
	enc *json.Encoder
}

// NewJSONSink writes NDJSON to w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

// Write implements Sink.
func (s *JSONSink) Write(r *decode.Record) error {
	return s.enc.Encode(r)
}

// Close implements Sink. The encoder holds no buffered state.
func (s *JSONSink) Close() error { return nil }
