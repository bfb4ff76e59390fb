package formats

import (
	"fmt"
	"time"

	"github.com/logshape/logshape/datetime"
	"github.com/logshape/logshape/decode"
	"github.com/logshape/logshape/grammar"
)

// QueryLog decodes search-daemon query logs (Sphinx searchd style):
//
//	[Fri Jun 29 21:17:58.609 2007] 0.004 sec [all/0/rel 35254 (0,20) @group_id] [products] [ios=4 kb=1.2 ioms=0.5] shoes
//
// The timestamp is the completion time of the query; the elapsed seconds are
// subtracted by default to recover the start time. The group-by and io-stats
// segments are optional.
type QueryLog struct {
	asm     *decode.Assembler
	pattern grammar.Pattern
}

// monthName captures a C-locale month abbreviation, converted to its number.
// An unknown name fails the match.
func monthName(name string) grammar.Pattern {
	abbrev := grammar.Seq(grammar.Alpha, grammar.Alpha, grammar.Alpha)
	return grammar.CapWith(name, abbrev, func(s string) (any, error) {
		n, ok := datetime.MonthNum(s)
		if !ok {
			return nil, fmt.Errorf("unknown month %q", s)
		}
		return int64(n), nil
	})
}

// NewQueryLog builds the decoder from the instance configuration.
func NewQueryLog(cfg decode.Config) (*QueryLog, error) {
	sp := grammar.Min(grammar.Space, 1)
	weekday := grammar.Seq(grammar.Alpha, grammar.Alpha, grammar.Alpha)

	p := grammar.Seq(
		grammar.Lit("["),
		weekday,
		sp,
		monthName("month"),
		sp,
		capInt("day", grammar.Digits(1, 2)),
		sp,
		capInt("hour", grammar.Digits(2, 2)),
		grammar.Lit(":"),
		capInt("minute", grammar.Digits(2, 2)),
		grammar.Lit(":"),
		capInt("second", grammar.Digits(2, 2)),
		grammar.Opt(grammar.Seq(
			grammar.Lit("."),
			grammar.Cap("frac", grammar.Digits(1, 9)),
		)),
		sp,
		capInt("year", grammar.Digits(4, 4)),
		grammar.Lit("] "),
		capFloat("elapsed", grammar.Until(grammar.Space)),
		grammar.Lit(" sec ["),
		grammar.Cap("match_mode", grammar.Until(grammar.Lit("/"))),
		grammar.Lit("/"),
		capInt("filter_count", grammar.Digits(1, 0)),
		grammar.Lit("/"),
		grammar.Cap("sort_mode", grammar.Until(grammar.Space)),
		sp,
		capInt("total_matches", grammar.Digits(1, 0)),
		grammar.Lit(" ("),
		capInt("offset", grammar.Digits(1, 0)),
		grammar.Lit(","),
		capInt("limit", grammar.Digits(1, 0)),
		grammar.Lit(")"),
		grammar.Opt(grammar.Seq(
			grammar.Lit(" @"),
			grammar.Cap("groupby", grammar.Until(grammar.Lit("]"))),
		)),
		grammar.Lit("] ["),
		grammar.Cap("index", grammar.Until(grammar.Lit("]"))),
		grammar.Lit("]"),
		grammar.Opt(grammar.Seq(
			grammar.Lit(" [ios="),
			capInt("ios", grammar.Digits(1, 0)),
			grammar.Lit(" kb="),
			capFloat("kb", grammar.Until(grammar.Space)),
			grammar.Lit(" ioms="),
			capFloat("ioms", grammar.Until(grammar.Lit("]"))),
			grammar.Lit("]"),
		)),
		grammar.Opt(grammar.Seq(
			grammar.Lit(" "),
			grammar.Cap("query", grammar.Rest()),
		)),
	)

	return &QueryLog{
		asm:     decode.NewAssembler(decode.ParseOptions(cfg)),
		pattern: p,
	}, nil
}

// Decode matches one query-log line.
func (d *QueryLog) Decode(line string) (*decode.Record, error) {
	caps, n, ok := grammar.Match(d.pattern, line)
	if !ok || n != len(line) {
		return nil, fmt.Errorf("query log: %w", decode.ErrNoMatch)
	}

	nsec := 0
	if frac, ok := caps["frac"].(string); ok {
		nsec = datetime.FracNsec(frac)
	}
	finish, err := datetime.Components{
		Year:   capI(caps, "year"),
		Month:  capI(caps, "month"),
		Day:    capI(caps, "day"),
		Hour:   capI(caps, "hour"),
		Minute: capI(caps, "minute"),
		Second: capI(caps, "second"),
		Nsec:   nsec,
	}.Resolve(d.asm.Options().Loc)
	if err != nil {
		return nil, fmt.Errorf("query log: %v: %w", err, decode.ErrNoMatch)
	}

	elapsedSec := caps["elapsed"].(float64)

	r := d.asm.New()
	r.SetTimestamp(d.asm.StartTime(finish, time.Duration(elapsedSec*float64(time.Second))))
	r.Fields["query_time"] = elapsedSec
	d.asm.CopyFields(r, caps, nil,
		"month", "day", "hour", "minute", "second", "frac", "year",
		"elapsed", "query")

	if q, _ := caps["query"].(string); q != "" {
		d.asm.SetPayload(r, q)
	}

	return r, nil
}
