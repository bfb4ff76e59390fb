// Package grammar provides byte-level matching combinators for building
// declarative log-format grammars.
//
// A Pattern matches at a cursor position inside an input string and either
// consumes some bytes or fails without consuming anything. Matching is
// deterministic: sequence never backtracks into an element that already
// succeeded, and ordered choice commits to the first alternative that
// matches. Grammar authors compensate with Choice and Until, which is how
// every format in this repository is written.
//
// Captures recorded by a failed alternative are rolled back, so a grammar
// match never leaves partial results behind.
package grammar

import (
	"strconv"
	"strings"
)

// Captures is the named-value result of a successful match.
// Values are either the matched substring or the output of a transform.
type Captures map[string]any

// Pattern matches the input held by m starting at pos.
// On success it returns the new cursor position and true.
// On failure it returns pos unchanged and false, with no captures recorded.
type Pattern func(m *Matcher, pos int) (int, bool)

// Matcher holds the input and the captures recorded so far during a match.
// A Matcher is single-use; Match creates one per input line.
type Matcher struct {
	src  string
	caps []capturedValue
}

type capturedValue struct {
	name  string
	value any
}

// Input returns the full input string being matched.
func (m *Matcher) Input() string { return m.src }

// mark and rewind implement capture rollback for failed alternatives.
func (m *Matcher) mark() int       { return len(m.caps) }
func (m *Matcher) rewind(mark int) { m.caps = m.caps[:mark] }

// Match runs p against s from the start and returns the capture mapping,
// the number of bytes consumed, and whether the match succeeded.
// Callers that require a whole-line match must check consumed == len(s).
func Match(p Pattern, s string) (Captures, int, bool) {
	m := &Matcher{src: s}
	end, ok := p(m, 0)
	if !ok {
		return nil, 0, false
	}
	caps := make(Captures, len(m.caps))
	for _, c := range m.caps {
		caps[c.name] = c.value
	}
	return caps, end, true
}

// Lit matches exactly text at the current position.
func Lit(text string) Pattern {
	return func(m *Matcher, pos int) (int, bool) {
		if !strings.HasPrefix(m.src[pos:], text) {
			return pos, false
		}
		return pos + len(text), true
	}
}

// Byte matches exactly one byte satisfying pred.
func Byte(pred func(byte) bool) Pattern {
	return func(m *Matcher, pos int) (int, bool) {
		if pos >= len(m.src) || !pred(m.src[pos]) {
			return pos, false
		}
		return pos + 1, true
	}
}

// Set matches exactly one byte contained in chars.
func Set(chars string) Pattern {
	return Byte(func(b byte) bool { return strings.IndexByte(chars, b) >= 0 })
}

// Common byte classes.
var (
	Digit = Byte(func(b byte) bool { return b >= '0' && b <= '9' })
	Alpha = Byte(func(b byte) bool {
		return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
	})
	Hex = Byte(func(b byte) bool {
		return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
	})
	Space = Byte(func(b byte) bool { return b == ' ' || b == '\t' })
)

// Seq matches p1 then p2 and so on at the resulting cursor. It fails as soon
// as any element fails, restoring the cursor and captures to the sequence's
// starting state.
func Seq(ps ...Pattern) Pattern {
	return func(m *Matcher, pos int) (int, bool) {
		mark := m.mark()
		cur := pos
		for _, p := range ps {
			next, ok := p(m, cur)
			if !ok {
				m.rewind(mark)
				return pos, false
			}
			cur = next
		}
		return cur, true
	}
}

// Choice tries each alternative against the original position and commits to
// the first that succeeds. Order is significant: where alternatives share a
// prefix, the longer or more specific one must come first.
func Choice(ps ...Pattern) Pattern {
	return func(m *Matcher, pos int) (int, bool) {
		for _, p := range ps {
			mark := m.mark()
			if next, ok := p(m, pos); ok {
				return next, true
			}
			m.rewind(mark)
		}
		return pos, false
	}
}

// Min greedily matches p as many times as possible, requiring at least n
// repetitions. There is no backtracking into a failed repetition.
func Min(p Pattern, n int) Pattern {
	return func(m *Matcher, pos int) (int, bool) {
		mark := m.mark()
		cur := pos
		count := 0
		for {
			inner := m.mark()
			next, ok := p(m, cur)
			if !ok || next == cur {
				m.rewind(inner)
				break
			}
			cur = next
			count++
		}
		if count < n {
			m.rewind(mark)
			return pos, false
		}
		return cur, true
	}
}

// Opt matches p zero or one time and always succeeds.
func Opt(p Pattern) Pattern {
	return func(m *Matcher, pos int) (int, bool) {
		mark := m.mark()
		if next, ok := p(m, pos); ok {
			return next, true
		}
		m.rewind(mark)
		return pos, true
	}
}

// Until matches the longest run of bytes such that marker does not match at
// any position inside the run. The marker itself is not consumed. This is the
// idiom for "read free text up to the next known delimiter".
func Until(marker Pattern) Pattern {
	return func(m *Matcher, pos int) (int, bool) {
		cur := pos
		for cur < len(m.src) {
			mark := m.mark()
			_, ok := marker(m, cur)
			m.rewind(mark)
			if ok {
				break
			}
			cur++
		}
		return cur, true
	}
}

// Rest consumes everything up to the end of the input.
func Rest() Pattern {
	return func(m *Matcher, pos int) (int, bool) {
		return len(m.src), true
	}
}

// EOF succeeds only at the end of the input without consuming anything.
func EOF() Pattern {
	return func(m *Matcher, pos int) (int, bool) {
		return pos, pos == len(m.src)
	}
}

// Cap runs p and, on success, records the consumed substring under name.
func Cap(name string, p Pattern) Pattern {
	return func(m *Matcher, pos int) (int, bool) {
		next, ok := p(m, pos)
		if !ok {
			return pos, false
		}
		m.caps = append(m.caps, capturedValue{name: name, value: m.src[pos:next]})
		return next, true
	}
}

// CapWith runs p and, on success, records f(consumed substring) under name.
// If f returns an error the whole match fails: a value-conversion failure is
// treated exactly like a grammar mismatch.
func CapWith(name string, p Pattern, f func(string) (any, error)) Pattern {
	return func(m *Matcher, pos int) (int, bool) {
		next, ok := p(m, pos)
		if !ok {
			return pos, false
		}
		v, err := f(m.src[pos:next])
		if err != nil {
			return pos, false
		}
		m.caps = append(m.caps, capturedValue{name: name, value: v})
		return next, true
	}
}

// ToInt is a CapWith transform producing int64.
func ToInt(s string) (any, error) {
	return strconv.ParseInt(s, 10, 64)
}

// ToFloat is a CapWith transform producing float64.
func ToFloat(s string) (any, error) {
	return strconv.ParseFloat(s, 64)
}

// Digits matches a run of at least min and at most max decimal digits.
// max <= 0 means unbounded.
func Digits(min, max int) Pattern {
	return func(m *Matcher, pos int) (int, bool) {
		cur := pos
		for cur < len(m.src) && m.src[cur] >= '0' && m.src[cur] <= '9' {
			cur++
			if max > 0 && cur-pos == max {
				break
			}
		}
		if cur-pos < min {
			return pos, false
		}
		return cur, true
	}
}
