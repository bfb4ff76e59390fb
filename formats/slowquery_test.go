package formats

import (
	"errors"
	"testing"
	"time"

	"github.com/logshape/logshape/decode"
)

const slowEntry = `# Time: 140924 17:19:56
# User@Host: webuser[webuser] @ dbhost [10.0.0.5]
# Query_time: 1.500000  Lock_time: 0.000123 Rows_sent: 42  Rows_examined: 12345
SET timestamp=1411579196;
SELECT * FROM orders
WHERE customer_id = 7;`

func TestSlowQueryFullEntry(t *testing.T) {
	d, err := NewSlowQuery(decode.ConfigMap{"type": "mysql.slow-query"})
	if err != nil {
		t.Fatal(err)
	}

	r, err := d.Decode(slowEntry)
	if err != nil {
		t.Fatal(err)
	}

	// SET timestamp is the authoritative finish time; the elapsed
	// Query_time is subtracted by default.
	finish := time.Unix(1411579196, 0)
	if want := finish.Add(-1500 * time.Millisecond); !r.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", r.Timestamp, want)
	}

	if r.Fields["query_time"] != 1.5 {
		t.Errorf("query_time = %v", r.Fields["query_time"])
	}
	if r.Fields["lock_time"] != 0.000123 {
		t.Errorf("lock_time = %v", r.Fields["lock_time"])
	}
	if r.Fields["rows_sent"] != int64(42) || r.Fields["rows_examined"] != int64(12345) {
		t.Errorf("row counts = %v / %v", r.Fields["rows_sent"], r.Fields["rows_examined"])
	}
	if r.Fields["user"] != "webuser" {
		t.Errorf("user = %v", r.Fields["user"])
	}
	if r.Hostname != "dbhost" {
		t.Errorf("hostname = %q", r.Hostname)
	}
	if r.Payload != "SELECT * FROM orders\nWHERE customer_id = 7;" {
		t.Errorf("payload = %q", r.Payload)
	}

	// Both clocks present: the header/SET difference is exposed as lag.
	header := time.Date(2014, 9, 24, 17, 19, 56, 0, time.UTC)
	if want := header.Sub(finish).Seconds(); r.Fields["lag"] != want {
		t.Errorf("lag = %v, want %v", r.Fields["lag"], want)
	}

	// Internal helper captures never reach the field mapping.
	for _, internal := range []string{"qt", "lt", "rs", "re", "yy", "unix"} {
		if _, ok := r.Fields[internal]; ok {
			t.Errorf("internal capture %q exposed", internal)
		}
	}
}

func TestSlowQueryAdjustmentDisabled(t *testing.T) {
	d, err := NewSlowQuery(decode.ConfigMap{"log_query_start": "false"})
	if err != nil {
		t.Fatal(err)
	}

	r, err := d.Decode(slowEntry)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Unix(1411579196, 0); !r.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want raw finish %v", r.Timestamp, want)
	}
}

func TestSlowQueryTwoDigitYearHeaderOnly(t *testing.T) {
	d, err := NewSlowQuery(decode.ConfigMap{"log_query_start": "false"})
	if err != nil {
		t.Fatal(err)
	}

	entry := "# Time: 140924 17:19:56\n# Query_time: 0.010000  Lock_time: 0.000000 Rows_sent: 1  Rows_examined: 1\nSELECT 1;"
	r, err := d.Decode(entry)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2014, 9, 24, 17, 19, 56, 0, time.UTC); !r.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", r.Timestamp, want)
	}
	if _, ok := r.Fields["lag"]; ok {
		t.Error("lag must not be derived from a single clock")
	}
}

func TestSlowQueryNoStatsLineRejected(t *testing.T) {
	d, err := NewSlowQuery(decode.ConfigMap{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.Decode("SELECT 1;"); !errors.Is(err, decode.ErrNoMatch) {
		t.Errorf("error = %v, want ErrNoMatch", err)
	}
}

func TestSlowQueryPayloadTruncation(t *testing.T) {
	d, err := NewSlowQuery(decode.ConfigMap{"truncate_bytes": "8"})
	if err != nil {
		t.Fatal(err)
	}

	r, err := d.Decode(slowEntry)
	if err != nil {
		t.Fatal(err)
	}
	if r.Payload != "SELECT *..." {
		t.Errorf("payload = %q", r.Payload)
	}
}

func TestSlowQueryEntryStart(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		buffered string
		want     bool
	}{
		{"time header", "# Time: 140924 17:19:56", "anything", true},
		{"user header after statement", "# User@Host: a[a] @ h []", "SELECT 1;", true},
		{"user header mid entry", "# User@Host: a[a] @ h []", "# Time: 140924 17:19:56\n", false},
		{"statement line", "SELECT 1;", "...", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slowQueryEntryStart(tt.line, tt.buffered); got != tt.want {
				t.Errorf("slowQueryEntryStart = %v, want %v", got, tt.want)
			}
		})
	}
}
