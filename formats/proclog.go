package formats

import (
	"fmt"

	"github.com/logshape/logshape/datetime"
	"github.com/logshape/logshape/decode"
	"github.com/logshape/logshape/grammar"
)

// procLevels maps supervisord level words to syslog severities. The daemon
// has no emergency-class levels; everything below INFO maps to debug.
var procLevels = map[string]int{
	"CRIT": 2,
	"ERRO": 3,
	"WARN": 4,
	"INFO": 6,
	"DEBG": 7,
	"TRAC": 7,
	"BLAT": 7,
}

// procLevelPattern tries the level words in a fixed order, most specific
// first. All supervisord levels are four characters, but ERRO must still
// precede any future ERR-prefixed word: the first successful alternative
// wins and reordering silently changes what gets consumed.
var procLevelPattern = grammar.Choice(
	grammar.Lit("CRIT"),
	grammar.Lit("ERRO"),
	grammar.Lit("WARN"),
	grammar.Lit("INFO"),
	grammar.Lit("DEBG"),
	grammar.Lit("TRAC"),
	grammar.Lit("BLAT"),
)

// ProcLog decodes process-manager (supervisord-style) logs:
//
//	2014-09-24 17:19:56,123 INFO spawned: 'worker' with pid 4921
//
// The millisecond part after the comma is part of the timestamp. When the
// message reports a child pid, it becomes the record's process id; the
// daemon never logs its own.
type ProcLog struct {
	asm     *decode.Assembler
	pattern grammar.Pattern
}

// NewProcLog builds the decoder from the instance configuration.
func NewProcLog(cfg decode.Config) (*ProcLog, error) {
	p := grammar.Seq(
		capInt("year", grammar.Digits(4, 4)),
		grammar.Lit("-"),
		capInt("month", grammar.Digits(2, 2)),
		grammar.Lit("-"),
		capInt("day", grammar.Digits(2, 2)),
		grammar.Lit(" "),
		capInt("hour", grammar.Digits(2, 2)),
		grammar.Lit(":"),
		capInt("minute", grammar.Digits(2, 2)),
		grammar.Lit(":"),
		capInt("second", grammar.Digits(2, 2)),
		grammar.Lit(","),
		grammar.Cap("frac", grammar.Digits(3, 3)),
		grammar.Lit(" "),
		grammar.Cap("level", procLevelPattern),
		grammar.Lit(" "),
		grammar.Cap("message", grammar.Rest()),
	)

	return &ProcLog{
		asm:     decode.NewAssembler(decode.ParseOptions(cfg)),
		pattern: p,
	}, nil
}

// Decode matches one process-manager line.
func (d *ProcLog) Decode(line string) (*decode.Record, error) {
	caps, n, ok := grammar.Match(d.pattern, line)
	if !ok || n != len(line) {
		return nil, fmt.Errorf("proc log: %w", decode.ErrNoMatch)
	}

	ts, err := datetime.Components{
		Year:   capI(caps, "year"),
		Month:  capI(caps, "month"),
		Day:    capI(caps, "day"),
		Hour:   capI(caps, "hour"),
		Minute: capI(caps, "minute"),
		Second: capI(caps, "second"),
		Nsec:   datetime.FracNsec(caps["frac"].(string)),
	}.Resolve(d.asm.Options().Loc)
	if err != nil {
		return nil, fmt.Errorf("proc log: %v: %w", err, decode.ErrNoMatch)
	}

	message := caps["message"].(string)

	r := d.asm.New()
	r.SetTimestamp(ts)
	r.SetSeverity(procLevels[caps["level"].(string)])
	if pid, ok := childPID(message); ok {
		r.SetPID(pid)
	}
	d.asm.SetPayload(r, message)

	return r, nil
}

// childPIDPattern finds the first " with pid N" annotation in a message.
var childPIDPattern = grammar.Seq(
	grammar.Until(grammar.Lit(" with pid ")),
	grammar.Lit(" with pid "),
	capInt("pid", grammar.Digits(1, 0)),
)

// childPID extracts the spawned process id from messages such as
// "spawned: 'worker' with pid 4921".
func childPID(message string) (int, bool) {
	caps, _, ok := grammar.Match(childPIDPattern, message)
	if !ok {
		return 0, false
	}
	return capI(caps, "pid"), true
}
