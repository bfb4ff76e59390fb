package decode

import (
	"testing"
	"time"
)

func TestSplitGeneratedNames(t *testing.T) {
	s := NewSplitter(Options{Delimiter: ","})

	fields, ts := s.Split("a,b,c")

	if !ts.IsZero() {
		t.Errorf("timestamp = %v, want unset", ts)
	}
	want := map[string]any{"field_1": "a", "field_2": "b", "field_3": "c"}
	if len(fields) != len(want) {
		t.Fatalf("fields = %v", fields)
	}
	for name, v := range want {
		if fields[name] != v {
			t.Errorf("fields[%s] = %v, want %v", name, fields[name], v)
		}
	}
}

func TestSplitPositionalNamesThenGenerated(t *testing.T) {
	s := NewSplitter(Options{Delimiter: ",", FieldNames: []string{"host", "status"}})

	fields, _ := s.Split("web1,200,extra")

	if fields["host"] != "web1" || fields["status"] != "200" || fields["field_3"] != "extra" {
		t.Errorf("fields = %v", fields)
	}
}

func TestSplitCustomDelimiter(t *testing.T) {
	s := NewSplitter(Options{Delimiter: "\t"})
	fields, _ := s.Split("a\tb")
	if fields["field_1"] != "a" || fields["field_2"] != "b" {
		t.Errorf("fields = %v", fields)
	}
}

func TestSplitTimestampColumn(t *testing.T) {
	s := NewSplitter(Options{
		Delimiter:  ",",
		FieldNames: []string{"ts", "host"},
		TimeIndex:  1,
		TimeLayout: "%Y-%m-%d %H:%M:%S",
		Loc:        time.UTC,
	})

	fields, ts := s.Split("2014-09-24 17:19:56,web1")

	if want := time.Date(2014, 9, 24, 17, 19, 56, 0, time.UTC); !ts.Equal(want) {
		t.Errorf("timestamp = %v, want %v", ts, want)
	}
	if _, ok := fields["ts"]; ok {
		t.Error("timestamp column must not appear in the field mapping")
	}
	if fields["host"] != "web1" {
		t.Errorf("fields = %v", fields)
	}
}

func TestSplitTimestampColumnParseFailureKeepsRaw(t *testing.T) {
	s := NewSplitter(Options{
		Delimiter:  ",",
		TimeIndex:  1,
		TimeLayout: "%Y-%m-%d %H:%M:%S",
		Loc:        time.UTC,
	})

	fields, ts := s.Split("not-a-date,web1")

	if !ts.IsZero() {
		t.Errorf("timestamp = %v, want unset", ts)
	}
	if fields["field_1"] != "not-a-date" {
		t.Errorf("raw text not kept as ordinary field: %v", fields)
	}
}

// A line ending exactly on a trailing delimiter yields a final empty field.
// Earlier implementations of this splitter copied the whole raw line into
// the payload in that one case; that was an artifact of the termination
// check, and the payload now deliberately stays unset for every delimited
// line.
func TestSplitTrailingDelimiter(t *testing.T) {
	s := NewSplitter(Options{Delimiter: ","})

	fields, ts := s.Split("a,b,")

	if !ts.IsZero() {
		t.Errorf("timestamp = %v, want unset", ts)
	}
	if fields["field_3"] != "" {
		t.Errorf("fields = %v, want empty trailing field", fields)
	}
}

func TestSplitEmptyDelimiterFallsBackToComma(t *testing.T) {
	s := NewSplitter(Options{})

	fields, _ := s.Split("a,b")

	if fields["field_1"] != "a" || fields["field_2"] != "b" {
		t.Errorf("fields = %v", fields)
	}
}

func TestSplitStripsLineTerminator(t *testing.T) {
	s := NewSplitter(Options{Delimiter: ","})
	fields, _ := s.Split("a,b\r\n")
	if fields["field_2"] != "b" {
		t.Errorf("fields = %v", fields)
	}
}
