package datetime

import (
	"fmt"
	"strings"
	"time"
)

// strptime verb to Go reference-layout fragment. Only the verbs that appear
// in real timestamp columns are supported; an unknown verb is a configuration
// error surfaced at decoder construction, not at match time.
var strptimeVerbs = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'H': "15",
	'M': "04",
	'S': "05",
	'b': "Jan",
	'a': "Mon",
	'p': "PM",
	'f': ".000000",
	'z': "-0700",
	'Z': "MST",
	'%': "%",
}

// StrptimeLayout converts a strptime-like layout string into a Go time
// layout. Bytes outside %-verbs are copied through verbatim.
func StrptimeLayout(layout string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(layout); i++ {
		if layout[i] != '%' {
			b.WriteByte(layout[i])
			continue
		}
		i++
		if i >= len(layout) {
			return "", fmt.Errorf("trailing %% in layout %q", layout)
		}
		frag, ok := strptimeVerbs[layout[i]]
		if !ok {
			return "", fmt.Errorf("unsupported verb %%%c in layout %q", layout[i], layout)
		}
		b.WriteString(frag)
	}
	return b.String(), nil
}

// ParseStrptime parses value against a strptime-like layout, interpreting
// offsetless values in loc (UTC when nil). Layouts containing an explicit
// offset verb are authoritative and loc is ignored by the stdlib parser.
func ParseStrptime(layout, value string, loc *time.Location) (time.Time, error) {
	goLayout, err := StrptimeLayout(layout)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(goLayout, value, loc)
}
