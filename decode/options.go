package decode

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/logshape/logshape/datetime"
)

// Config is the boundary to the hosting runtime's configuration store.
// Every option is read exactly once, when the decoder is constructed.
type Config interface {
	// Get returns the raw value for name and whether it was supplied.
	Get(name string) (string, bool)
}

// ConfigMap is the map-backed Config used by the CLI and by tests.
type ConfigMap map[string]string

// Get implements Config.
func (c ConfigMap) Get(name string) (string, bool) {
	v, ok := c[name]
	return v, ok
}

// Options holds the decoded per-instance configuration. Options are
// immutable for the lifetime of a decoder.
type Options struct {
	// Type is the record label, copied verbatim into every record.
	Type string

	// Loc is the zone applied to offsetless timestamps. Defaults to UTC.
	Loc *time.Location

	// Truncate, when non-nil, is the signed payload truncation limit in
	// bytes. Nil means no truncation.
	Truncate *int

	// LogQueryStart subtracts an elapsed duration from a logged finish
	// timestamp, yielding the time the operation started. Default true.
	LogQueryStart bool

	// Delimiter is the field separator for the delimited splitter.
	// Defaults to ",".
	Delimiter string

	// FieldNames are the positional column names for the delimited
	// splitter, already split on Delimiter.
	FieldNames []string

	// TimeIndex is the 1-based column holding a timestamp, 0 when the
	// feature is disabled. Valid only together with TimeLayout.
	TimeIndex int

	// TimeLayout is the strptime-like layout for the timestamp column.
	TimeLayout string
}

// ParseOptions reads the recognized options from cfg. Inconsistent option
// pairs disable the dependent feature with a warning instead of failing
// startup; an unparseable zone falls back to UTC the same way.
func ParseOptions(cfg Config) Options {
	opts := Options{
		Loc:           time.UTC,
		LogQueryStart: true,
		Delimiter:     ",",
	}

	if v, ok := cfg.Get("type"); ok {
		opts.Type = v
	}

	if v, ok := cfg.Get("tz"); ok {
		loc, err := time.LoadLocation(v)
		if err != nil {
			log.Printf("[WARN] unknown time zone %q, falling back to UTC", v)
		} else {
			opts.Loc = loc
		}
	}

	if v, ok := cfg.Get("truncate_bytes"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("[WARN] invalid truncate_bytes %q, truncation disabled", v)
		} else {
			opts.Truncate = &n
		}
	}

	if v, ok := cfg.Get("log_query_start"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("[WARN] invalid log_query_start %q, keeping default true", v)
		} else {
			opts.LogQueryStart = b
		}
	}

	if v, ok := cfg.Get("field_delimiter"); ok && v != "" {
		opts.Delimiter = v
	}

	if v, ok := cfg.Get("field_names"); ok && v != "" {
		for _, name := range strings.Split(v, opts.Delimiter) {
			opts.FieldNames = append(opts.FieldNames, strings.TrimSpace(name))
		}
	}

	index, hasIndex := cfg.Get("timestamp_field_index")
	layout, hasLayout := cfg.Get("timestamp_format")
	switch {
	case hasIndex && hasLayout:
		n, err := strconv.Atoi(index)
		if err != nil || n < 1 {
			log.Printf("[WARN] invalid timestamp_field_index %q, timestamp column disabled", index)
			break
		}
		if _, err := datetime.StrptimeLayout(layout); err != nil {
			log.Printf("[WARN] %v, timestamp column disabled", err)
			break
		}
		opts.TimeIndex = n
		opts.TimeLayout = layout
	case hasIndex != hasLayout:
		// Only one of the pair supplied: both are ignored.
		log.Printf("[WARN] timestamp_field_index and timestamp_format must be paired, timestamp column disabled")
	}

	return opts
}
