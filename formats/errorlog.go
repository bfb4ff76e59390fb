// Package formats contains the per-log-family decoders. Each format is a
// declarative composition of the grammar primitives, built once at decoder
// construction and reused for every line.
package formats

import (
	"fmt"

	"github.com/logshape/logshape/datetime"
	"github.com/logshape/logshape/decode"
	"github.com/logshape/logshape/grammar"
)

// errorLevels maps the error-log level words to syslog severities.
var errorLevels = map[string]int{
	"emerg":  0,
	"alert":  1,
	"crit":   2,
	"error":  3,
	"warn":   4,
	"notice": 5,
	"info":   6,
	"debug":  7,
}

// errorLevelPattern tries the level words in a fixed order. The order is
// part of the grammar: a word that is a prefix of another must come after
// it, or the shorter alternative would win and leave the tail unmatched.
var errorLevelPattern = grammar.Choice(
	grammar.Lit("notice"),
	grammar.Lit("emerg"),
	grammar.Lit("alert"),
	grammar.Lit("error"),
	grammar.Lit("debug"),
	grammar.Lit("crit"),
	grammar.Lit("warn"),
	grammar.Lit("info"),
)

// ErrorLog decodes nginx-style web-server error logs:
//
//	2014/09/24 17:19:56 [error] 123#45: *89 open() failed ..., client: 1.2.3.4, server: example.com
//
// The fixed core header is matched by grammar; the variable trailing
// annotations are peeled off by the suffix extractor, rightmost marker
// first, and whatever remains becomes the payload.
type ErrorLog struct {
	asm     *decode.Assembler
	pattern grammar.Pattern
	tail    *decode.SuffixExtractor
}

// NewErrorLog builds the decoder from the instance configuration.
func NewErrorLog(cfg decode.Config) (*ErrorLog, error) {
	p := grammar.Seq(
		capInt("year", grammar.Digits(4, 4)),
		grammar.Lit("/"),
		capInt("month", grammar.Digits(2, 2)),
		grammar.Lit("/"),
		capInt("day", grammar.Digits(2, 2)),
		grammar.Lit(" "),
		capInt("hour", grammar.Digits(2, 2)),
		grammar.Lit(":"),
		capInt("minute", grammar.Digits(2, 2)),
		grammar.Lit(":"),
		capInt("second", grammar.Digits(2, 2)),
		grammar.Lit(" ["),
		grammar.Cap("level", errorLevelPattern),
		grammar.Lit("] "),
		capInt("pid", grammar.Digits(1, 0)),
		grammar.Lit("#"),
		capInt("tid", grammar.Digits(1, 0)),
		grammar.Lit(": "),
		grammar.Opt(grammar.Seq(
			grammar.Lit("*"),
			capInt("connection", grammar.Digits(1, 0)),
			grammar.Lit(" "),
		)),
		grammar.Cap("message", grammar.Rest()),
	)

	tail := decode.NewSuffixExtractor(
		decode.SuffixField{Marker: ", referrer: ", Name: "referrer"},
		decode.SuffixField{Marker: ", host: ", Name: "host"},
		decode.SuffixField{Marker: ", upstream: ", Name: "upstream"},
		decode.SuffixField{Marker: ", request: ", Name: "request"},
		decode.SuffixField{Marker: ", server: ", Name: "server"},
		decode.SuffixField{Marker: ", client: ", Name: "client"},
	)

	return &ErrorLog{
		asm:     decode.NewAssembler(decode.ParseOptions(cfg)),
		pattern: p,
		tail:    tail,
	}, nil
}

// Decode matches one error-log line.
func (d *ErrorLog) Decode(line string) (*decode.Record, error) {
	caps, n, ok := grammar.Match(d.pattern, line)
	if !ok || n != len(line) {
		return nil, fmt.Errorf("error log: %w", decode.ErrNoMatch)
	}

	ts, err := datetime.Components{
		Year:   capI(caps, "year"),
		Month:  capI(caps, "month"),
		Day:    capI(caps, "day"),
		Hour:   capI(caps, "hour"),
		Minute: capI(caps, "minute"),
		Second: capI(caps, "second"),
	}.Resolve(d.asm.Options().Loc)
	if err != nil {
		return nil, fmt.Errorf("error log: %v: %w", err, decode.ErrNoMatch)
	}

	r := d.asm.New()
	r.SetTimestamp(ts)
	r.SetSeverity(errorLevels[caps["level"].(string)])
	r.SetPID(capI(caps, "pid"))
	r.Fields["thread_id"] = caps["tid"]
	if conn, ok := caps["connection"]; ok {
		r.Fields["connection"] = conn
	}

	residual, annotations := d.tail.Extract(caps["message"].(string))
	for name, value := range annotations {
		r.Fields[name] = value
	}
	d.asm.SetPayload(r, residual)

	return r, nil
}

// capInt captures an integer-valued component.
func capInt(name string, p grammar.Pattern) grammar.Pattern {
	return grammar.CapWith(name, p, grammar.ToInt)
}

// capFloat captures a float-valued component.
func capFloat(name string, p grammar.Pattern) grammar.Pattern {
	return grammar.CapWith(name, p, grammar.ToFloat)
}

// capI reads an integer capture recorded by capInt.
func capI(caps grammar.Captures, name string) int {
	n, _ := caps[name].(int64)
	return int(n)
}
