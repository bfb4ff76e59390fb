package formats

import (
	"github.com/logshape/logshape/decode"
)

// Delimited decodes tabular logs split on a single configured delimiter.
// Column names come from the configured field_names list, with generated
// field_<n> names once the list runs out; one column may be designated as
// the record timestamp. There is no quoting support and the payload is
// always left unset.
type Delimited struct {
	asm      *decode.Assembler
	splitter *decode.Splitter
}

// NewDelimited builds the decoder from the instance configuration.
func NewDelimited(cfg decode.Config) (*Delimited, error) {
	opts := decode.ParseOptions(cfg)
	return &Delimited{
		asm:      decode.NewAssembler(opts),
		splitter: decode.NewSplitter(opts),
	}, nil
}

// Decode tokenizes one delimited line. Splitting cannot fail: a line with no
// delimiter is a single-field row.
func (d *Delimited) Decode(line string) (*decode.Record, error) {
	fields, ts := d.splitter.Split(line)

	r := d.asm.New()
	r.Fields = fields
	if !ts.IsZero() {
		r.SetTimestamp(ts)
	}
	return r, nil
}
