// Package cmd implements the command-line interface for logshape.
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"

	"github.com/logshape/logshape/decode"
	"github.com/logshape/logshape/output"
)

// extractor evaluates a compiled JMESPath expression against the JSON
// form of each record and forwards matching values to the sink. Records
// where the expression yields nothing are skipped silently.
type extractor struct {
	expr *jmespath.JMESPath
	sink output.Sink
}

func newExtractor(expr string, sink output.Sink) (*extractor, error) {
	compiled, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling extract expression: %w", err)
	}
	return &extractor{expr: compiled, sink: sink}, nil
}

// Write evaluates the expression against the record. The record is
// round-tripped through JSON so the expression sees the same document
// the json output would produce.
func (e *extractor) Write(r *decode.Record) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}

	res, err := e.expr.Search(doc)
	if err != nil {
		return fmt.Errorf("evaluating extract expression: %w", err)
	}
	if res == nil {
		return nil
	}

	return e.sink.Write(&decode.Record{
		Timestamp: r.Timestamp,
		Type:      r.Type,
		Fields:    map[string]any{"extracted": res},
	})
}
