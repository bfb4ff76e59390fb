package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/logshape/logshape/decode"
)

// parquetRow is the flat columnar projection of a record. Variable
// fields are carried as a JSON string column since their shape differs
// per format.
type parquetRow struct {
	Timestamp int64  `parquet:"timestamp,optional,timestamp(microsecond)"`
	Type      string `parquet:"type,optional,dict"`
	Severity  int32  `parquet:"severity,optional"`
	PID       int32  `parquet:"process_id,optional"`
	Hostname  string `parquet:"hostname,optional,dict"`
	Payload   string `parquet:"payload,optional"`
	Fields    string `parquet:"fields,optional"`
}

// ParquetSink writes records to a parquet file, one row per record.
type ParquetSink struct {
	pw *parquet.GenericWriter[parquetRow]
}

// NewParquetSink writes zstd-compressed parquet to w.
func NewParquetSink(w io.Writer) *ParquetSink {
	return &ParquetSink{
		pw: parquet.NewGenericWriter[parquetRow](w, parquet.Compression(&parquet.Zstd)),
	}
}

// Write implements Sink.
func (s *ParquetSink) Write(r *decode.Record) error {
	row := parquetRow{
		Type:     r.Type,
		Hostname: r.Hostname,
		Payload:  r.Payload,
	}
	if !r.Timestamp.IsZero() {
		row.Timestamp = r.Timestamp.UnixMicro()
	}
	if r.Severity != nil {
		row.Severity = int32(*r.Severity)
	}
	if r.PID != nil {
		row.PID = int32(*r.PID)
	}
	if len(r.Fields) > 0 {
		raw, err := json.Marshal(r.Fields)
		if err != nil {
			return fmt.Errorf("encoding fields: %w", err)
		}
		row.Fields = string(raw)
	}

	if _, err := s.pw.Write([]parquetRow{row}); err != nil {
		return fmt.Errorf("writing parquet row: %w", err)
	}
	return nil
}

// Close flushes buffered row groups and writes the file footer.
func (s *ParquetSink) Close() error {
	if err := s.pw.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}
