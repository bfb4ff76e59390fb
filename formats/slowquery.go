package formats

import (
	"fmt"
	"strings"
	"time"

	"github.com/logshape/logshape/datetime"
	"github.com/logshape/logshape/decode"
	"github.com/logshape/logshape/grammar"
)

// SlowQuery decodes MySQL-style slow-query records. One record is the whole
// multi-line entry, already delimited upstream:
//
//	# Time: 140924 17:19:56
//	# User@Host: webuser[webuser] @ dbhost [10.0.0.5]
//	# Query_time: 1.234567  Lock_time: 0.000123 Rows_sent: 42  Rows_examined: 12345
//	SET timestamp=1411579196;
//	SELECT * FROM orders WHERE customer_id = 7;
//
// The entry logs a finish timestamp plus the elapsed Query_time; by default
// the decoder subtracts the elapsed duration so the record carries the time
// the query started. The `# Time:` header uses a two-digit year, expanded
// with the current century.
type SlowQuery struct {
	asm     *decode.Assembler
	timeP   grammar.Pattern
	userP   grammar.Pattern
	statsP  grammar.Pattern
	setTsP  grammar.Pattern
	renames map[string]string
}

// NewSlowQuery builds the decoder from the instance configuration.
func NewSlowQuery(cfg decode.Config) (*SlowQuery, error) {
	sp := grammar.Min(grammar.Space, 1)

	timeP := grammar.Seq(
		grammar.Lit("# Time: "),
		capInt("yy", grammar.Digits(2, 2)),
		capInt("month", grammar.Digits(2, 2)),
		capInt("day", grammar.Digits(2, 2)),
		sp,
		capInt("hour", grammar.Digits(1, 2)),
		grammar.Lit(":"),
		capInt("minute", grammar.Digits(2, 2)),
		grammar.Lit(":"),
		capInt("second", grammar.Digits(2, 2)),
	)

	userP := grammar.Seq(
		grammar.Lit("# User@Host: "),
		grammar.Until(grammar.Lit("[")),
		grammar.Lit("["),
		grammar.Cap("user", grammar.Until(grammar.Lit("]"))),
		grammar.Lit("] @ "),
		grammar.Cap("host", grammar.Until(grammar.Lit(" "))),
		sp,
		grammar.Lit("["),
		grammar.Cap("ip", grammar.Until(grammar.Lit("]"))),
		grammar.Lit("]"),
	)

	statsP := grammar.Seq(
		grammar.Lit("# Query_time: "),
		capFloat("qt", grammar.Until(grammar.Space)),
		sp,
		grammar.Lit("Lock_time: "),
		capFloat("lt", grammar.Until(grammar.Space)),
		sp,
		grammar.Lit("Rows_sent: "),
		capInt("rs", grammar.Digits(1, 0)),
		sp,
		grammar.Lit("Rows_examined: "),
		capInt("re", grammar.Digits(1, 0)),
	)

	setTsP := grammar.Seq(
		grammar.Lit("SET timestamp="),
		capInt("unix", grammar.Digits(1, 0)),
		grammar.Lit(";"),
	)

	return &SlowQuery{
		asm:    decode.NewAssembler(decode.ParseOptions(cfg)),
		timeP:  timeP,
		userP:  userP,
		statsP: statsP,
		setTsP: setTsP,
		renames: map[string]string{
			"qt": "query_time",
			"lt": "lock_time",
			"rs": "rows_sent",
			"re": "rows_examined",
		},
	}, nil
}

// slowQueryEntryStart reports whether line begins a new slow-query entry.
// Entries normally start at a "# Time:" header, but the server omits it when
// consecutive queries finish in the same second; a "# User@Host:" header
// after a completed statement also opens a new entry.
func slowQueryEntryStart(line, buffered string) bool {
	if strings.HasPrefix(line, "# Time: ") {
		return true
	}
	return strings.HasPrefix(line, "# User@Host: ") && strings.Contains(buffered, ";")
}

// Decode matches one slow-query entry.
func (d *SlowQuery) Decode(entry string) (*decode.Record, error) {
	loc := d.asm.Options().Loc

	var headerTime, setTime time.Time
	var stats, user grammar.Captures
	var statement []string

	for rest := entry; rest != ""; {
		var line string
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i+1], rest[i+1:]
		} else {
			line, rest = rest, ""
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case strings.HasPrefix(line, "# Time: "):
			caps, _, ok := grammar.Match(d.timeP, line)
			if !ok {
				continue
			}
			t, err := datetime.Components{
				Year:   datetime.ExpandYear(capI(caps, "yy")),
				Month:  capI(caps, "month"),
				Day:    capI(caps, "day"),
				Hour:   capI(caps, "hour"),
				Minute: capI(caps, "minute"),
				Second: capI(caps, "second"),
			}.Resolve(loc)
			if err != nil {
				return nil, fmt.Errorf("slow query: %v: %w", err, decode.ErrNoMatch)
			}
			headerTime = t

		case strings.HasPrefix(line, "# User@Host: "):
			if caps, _, ok := grammar.Match(d.userP, line); ok {
				user = caps
			}

		case strings.HasPrefix(line, "# Query_time: "):
			caps, _, ok := grammar.Match(d.statsP, line)
			if !ok {
				return nil, fmt.Errorf("slow query: malformed stats line: %w", decode.ErrNoMatch)
			}
			stats = caps

		case strings.HasPrefix(line, "SET timestamp="):
			if caps, _, ok := grammar.Match(d.setTsP, line); ok {
				setTime = time.Unix(int64(capI(caps, "unix")), 0)
			}

		case strings.HasPrefix(line, "#"), strings.HasPrefix(line, "use "):
			// Other comment headers and USE statements are not part of
			// the query text.

		case line != "":
			statement = append(statement, line)
		}
	}

	// Query_time is the defining line of a slow-query entry.
	if stats == nil {
		return nil, fmt.Errorf("slow query: %w", decode.ErrNoMatch)
	}

	r := d.asm.New()
	d.asm.CopyFields(r, stats, d.renames)

	if user != nil {
		if u, _ := user["user"].(string); u != "" {
			r.Fields["user"] = u
		}
		if host, _ := user["host"].(string); host != "" {
			r.Hostname = host
		} else if ip, _ := user["ip"].(string); ip != "" {
			r.Hostname = ip
		}
	}

	elapsed := time.Duration(stats["qt"].(float64) * float64(time.Second))

	// SET timestamp is authoritative when present; the header time then
	// only contributes the lag between the two clocks.
	finish := setTime
	if finish.IsZero() {
		finish = headerTime
	} else if !headerTime.IsZero() {
		r.Fields["lag"] = headerTime.Sub(setTime).Seconds()
	}
	if !finish.IsZero() {
		r.SetTimestamp(d.asm.StartTime(finish, elapsed))
	}

	d.asm.SetPayload(r, strings.Join(statement, "\n"))

	return r, nil
}
