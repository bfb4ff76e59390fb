package decode

import (
	"fmt"
	"strings"
	"time"

	"github.com/logshape/logshape/datetime"
)

// Splitter is the incremental delimited-field tokenizer. It splits on a
// single configured delimiter with no quoting and no escaping: a delimiter
// or line terminator embedded in a field's natural content is
// indistinguishable from a real separator and will corrupt that and
// subsequent fields. That is a documented limitation, not a bug.
type Splitter struct {
	delim      string
	names      []string
	timeIndex  int
	timeLayout string
	loc        *time.Location
}

// NewSplitter builds a splitter from the instance options. An empty
// delimiter would pin the cursor in place, so it falls back to a comma.
func NewSplitter(opts Options) *Splitter {
	delim := opts.Delimiter
	if delim == "" {
		delim = ","
	}
	return &Splitter{
		delim:      delim,
		names:      opts.FieldNames,
		timeIndex:  opts.TimeIndex,
		timeLayout: opts.TimeLayout,
		loc:        opts.Loc,
	}
}

// Split tokenizes one line left to right. Each segment is assigned the
// positional name from the configured list, or a generated field_<n> name
// (1-based) once the list is exhausted. When a segment's position equals the
// configured timestamp column, the segment is parsed against the configured
// layout instead: on success it becomes the returned timestamp and is not
// added to the fields; on failure the raw text is kept as an ordinary field
// and the timestamp stays unset.
func (s *Splitter) Split(line string) (map[string]any, time.Time) {
	line = strings.TrimRight(line, "\r\n")

	fields := make(map[string]any)
	var ts time.Time

	pos := 0
	for n := 1; ; n++ {
		var segment string
		next := strings.Index(line[pos:], s.delim)
		if next < 0 {
			segment = line[pos:]
		} else {
			segment = line[pos : pos+next]
		}

		if s.timeIndex == n && s.timeLayout != "" {
			t, err := datetime.ParseStrptime(s.timeLayout, segment, s.loc)
			if err == nil {
				ts = t
			} else {
				fields[s.fieldName(n)] = segment
			}
		} else {
			fields[s.fieldName(n)] = segment
		}

		if next < 0 {
			break
		}
		pos += next + len(s.delim)
	}

	return fields, ts
}

// fieldName returns the positional name for the 1-based field index.
func (s *Splitter) fieldName(n int) string {
	if n <= len(s.names) && s.names[n-1] != "" {
		return s.names[n-1]
	}
	return fmt.Sprintf("field_%d", n)
}
