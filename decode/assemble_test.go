package decode

import (
	"testing"
	"time"

	"github.com/logshape/logshape/grammar"
)

func TestTruncatePositiveLimit(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"longer than limit", "hello world", 5, "hello..."},
		{"exactly at limit", "hello", 5, "hello"},
		{"shorter than limit", "hi", 5, "hi"},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.limit); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

func TestTruncateNegativeLimit(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"drops tail", "hello world", -5, "hello ..."},
		{"exactly at limit", "hello", -5, "hello"},
		{"shorter than limit", "hi", -5, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.limit); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

func TestTruncateIdempotentOnShortPayload(t *testing.T) {
	in := "short"
	if got := Truncate(Truncate(in, 10), 10); got != in {
		t.Errorf("double truncation changed short payload: %q", got)
	}
}

func TestTruncateOperatesOnBytes(t *testing.T) {
	// Truncation may split a multi-byte character; that is accepted.
	in := "héllo"
	got := Truncate(in, 2)
	if got != in[:2]+"..." {
		t.Errorf("Truncate(%q, 2) = %q, want raw byte cut", in, got)
	}
}

func TestStartTimeAdjustment(t *testing.T) {
	finish := time.Date(2014, 9, 24, 17, 19, 56, 0, time.UTC)
	elapsed := 90 * time.Second

	enabled := NewAssembler(Options{LogQueryStart: true})
	if got := enabled.StartTime(finish, elapsed); !got.Equal(finish.Add(-elapsed)) {
		t.Errorf("adjusted start = %v, want %v", got, finish.Add(-elapsed))
	}

	disabled := NewAssembler(Options{LogQueryStart: false})
	if got := disabled.StartTime(finish, elapsed); !got.Equal(finish) {
		t.Errorf("unadjusted start = %v, want raw finish %v", got, finish)
	}
}

func TestTimestampImmutableOnceSet(t *testing.T) {
	first := time.Date(2014, 9, 24, 17, 19, 56, 0, time.UTC)
	second := first.Add(time.Hour)

	var r Record
	r.SetTimestamp(first)
	r.SetTimestamp(second)
	if !r.Timestamp.Equal(first) {
		t.Errorf("timestamp mutated after first set: %v", r.Timestamp)
	}
}

func TestNewRecordIsClean(t *testing.T) {
	a := NewAssembler(Options{Type: "nginx.error"})

	r := a.New()
	r.Fields["stale"] = "value"
	r.SetSeverity(3)

	fresh := a.New()
	if len(fresh.Fields) != 0 || fresh.Severity != nil || !fresh.Timestamp.IsZero() {
		t.Errorf("records leak state across lines: %+v", fresh)
	}
	if fresh.Type != "nginx.error" {
		t.Errorf("type label = %q, want nginx.error", fresh.Type)
	}
}

func TestCopyFieldsRenameAndDrop(t *testing.T) {
	a := NewAssembler(Options{})
	r := a.New()
	caps := grammar.Captures{
		"qt":    1.5,
		"year":  "14",
		"user":  "alice",
		"rows":  int64(10),
		"month": "09",
	}

	a.CopyFields(r, caps, map[string]string{"qt": "query_time"}, "year", "month")

	if _, ok := r.Fields["year"]; ok {
		t.Error("dropped helper field exposed")
	}
	if _, ok := r.Fields["qt"]; ok {
		t.Error("renamed field kept its internal name")
	}
	if r.Fields["query_time"] != 1.5 || r.Fields["user"] != "alice" || r.Fields["rows"] != int64(10) {
		t.Errorf("fields = %v", r.Fields)
	}
}

func TestSetPayloadAppliesConfiguredLimit(t *testing.T) {
	limit := 4
	a := NewAssembler(Options{Truncate: &limit})
	r := a.New()
	a.SetPayload(r, "SELECT 1")
	if r.Payload != "SELE..." {
		t.Errorf("payload = %q", r.Payload)
	}

	none := NewAssembler(Options{})
	r = none.New()
	none.SetPayload(r, "SELECT 1")
	if r.Payload != "SELECT 1" {
		t.Errorf("payload without limit = %q", r.Payload)
	}
}
