package formats

import (
	"fmt"
	"sort"

	"github.com/logshape/logshape/decode"
)

// constructor builds a configured decoder for one log family.
type constructor func(decode.Config) (decode.Decoder, error)

// registry maps format names to their constructors. New formats are added
// by composing grammar primitives and registering the result here; no new
// engine code is involved.
var registry = map[string]constructor{
	"nginx-error": func(cfg decode.Config) (decode.Decoder, error) {
		return NewErrorLog(cfg)
	},
	"mysql-slow": func(cfg decode.Config) (decode.Decoder, error) {
		return NewSlowQuery(cfg)
	},
	"searchd-query": func(cfg decode.Config) (decode.Decoder, error) {
		return NewQueryLog(cfg)
	},
	"supervisord": func(cfg decode.Config) (decode.Decoder, error) {
		return NewProcLog(cfg)
	},
	"delimited": func(cfg decode.Config) (decode.Decoder, error) {
		return NewDelimited(cfg)
	},
}

// New returns a configured decoder for the named format.
func New(name string, cfg decode.Config) (decode.Decoder, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (known: %v)", name, Names())
	}
	return build(cfg)
}

// Names lists the registered format names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EntryStart reports whether line begins a new multi-line record for the
// named format. Formats without multi-line records treat every line as a
// record of its own.
func EntryStart(format string) func(line string, buffered string) bool {
	if format == "mysql-slow" {
		return slowQueryEntryStart
	}
	return nil
}
