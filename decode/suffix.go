package decode

import "strings"

// SuffixField pairs a literal marker with the field it introduces.
type SuffixField struct {
	Marker string
	Name   string
}

// SuffixExtractor peels optional trailing annotations off the unmatched tail
// of a line. Formats where a fixed core header is followed by a variable set
// of optional suffixes (web-server error logs and their client/request/host
// annotations) configure one extractor at decoder construction.
//
// Field order is load-bearing: each step only removes occurrences of its own
// marker, so markers must be listed outermost (rightmost) annotation first.
// If an earlier marker's literal can legitimately appear inside a field that
// should be extracted later, extracting in the wrong order corrupts the
// residual text.
type SuffixExtractor struct {
	fields []SuffixField
}

// NewSuffixExtractor returns an extractor over the given ordered pairs.
func NewSuffixExtractor(fields ...SuffixField) *SuffixExtractor {
	return &SuffixExtractor{fields: fields}
}

// Extract processes each configured marker in order against the current
// residual text. When a marker is found, everything after it becomes the raw
// value for its field and everything strictly before it becomes the new
// residual; a missing marker leaves its field unset and the residual
// unchanged. The returned residual is the record's free-text payload.
func (e *SuffixExtractor) Extract(residual string) (string, map[string]string) {
	values := make(map[string]string, len(e.fields))
	for _, f := range e.fields {
		idx := strings.Index(residual, f.Marker)
		if idx < 0 {
			continue
		}
		values[f.Name] = unquote(residual[idx+len(f.Marker):])
		residual = residual[:idx]
	}
	return residual, values
}

// unquote strips a leading double quote, returning the interior up to the
// next double quote or the end of the text. Unquoted values are returned
// verbatim.
func unquote(raw string) string {
	if !strings.HasPrefix(raw, `"`) {
		return raw
	}
	interior := raw[1:]
	if end := strings.IndexByte(interior, '"'); end >= 0 {
		return interior[:end]
	}
	return interior
}
