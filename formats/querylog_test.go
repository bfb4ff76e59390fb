package formats

import (
	"errors"
	"testing"
	"time"

	"github.com/logshape/logshape/decode"
)

func TestQueryLogFullLine(t *testing.T) {
	d, err := NewQueryLog(decode.ConfigMap{"type": "searchd.query"})
	if err != nil {
		t.Fatal(err)
	}

	line := "[Fri Jun 29 21:17:58.609 2007] 0.004 sec [all/0/rel 35254 (0,20)] [lj] test"
	r, err := d.Decode(line)
	if err != nil {
		t.Fatal(err)
	}

	finish := time.Date(2007, 6, 29, 21, 17, 58, 609_000_000, time.UTC)
	if want := finish.Add(-4 * time.Millisecond); !r.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", r.Timestamp, want)
	}
	if r.Fields["query_time"] != 0.004 {
		t.Errorf("query_time = %v", r.Fields["query_time"])
	}
	if r.Fields["match_mode"] != "all" || r.Fields["sort_mode"] != "rel" {
		t.Errorf("modes = %v / %v", r.Fields["match_mode"], r.Fields["sort_mode"])
	}
	if r.Fields["filter_count"] != int64(0) {
		t.Errorf("filter_count = %v", r.Fields["filter_count"])
	}
	if r.Fields["total_matches"] != int64(35254) {
		t.Errorf("total_matches = %v", r.Fields["total_matches"])
	}
	if r.Fields["offset"] != int64(0) || r.Fields["limit"] != int64(20) {
		t.Errorf("window = (%v,%v)", r.Fields["offset"], r.Fields["limit"])
	}
	if r.Fields["index"] != "lj" {
		t.Errorf("index = %v", r.Fields["index"])
	}
	if r.Payload != "test" {
		t.Errorf("payload = %q", r.Payload)
	}
}

func TestQueryLogGroupByAndIOStats(t *testing.T) {
	d, err := NewQueryLog(decode.ConfigMap{})
	if err != nil {
		t.Fatal(err)
	}

	line := "[Mon Sep  1 08:00:05.100 2014] 1.250 sec [ext2/1/attr 10 (0,10) @group_id] [products] [ios=4 kb=12.5 ioms=3.1] red shoes"
	r, err := d.Decode(line)
	if err != nil {
		t.Fatal(err)
	}

	if r.Fields["groupby"] != "group_id" {
		t.Errorf("groupby = %v", r.Fields["groupby"])
	}
	if r.Fields["ios"] != int64(4) || r.Fields["kb"] != 12.5 || r.Fields["ioms"] != 3.1 {
		t.Errorf("io stats = %v/%v/%v", r.Fields["ios"], r.Fields["kb"], r.Fields["ioms"])
	}
	if r.Payload != "red shoes" {
		t.Errorf("payload = %q", r.Payload)
	}
}

func TestQueryLogEmptyQuery(t *testing.T) {
	d, err := NewQueryLog(decode.ConfigMap{})
	if err != nil {
		t.Fatal(err)
	}

	line := "[Fri Jun 29 21:17:58.609 2007] 0.004 sec [all/0/rel 0 (0,20)] [lj]"
	r, err := d.Decode(line)
	if err != nil {
		t.Fatal(err)
	}
	if r.Payload != "" {
		t.Errorf("payload = %q, want unset", r.Payload)
	}
}

func TestQueryLogRejectsUnknownMonth(t *testing.T) {
	d, err := NewQueryLog(decode.ConfigMap{})
	if err != nil {
		t.Fatal(err)
	}

	line := "[Fri Xyz 29 21:17:58.609 2007] 0.004 sec [all/0/rel 0 (0,20)] [lj] q"
	if _, err := d.Decode(line); !errors.Is(err, decode.ErrNoMatch) {
		t.Errorf("error = %v, want ErrNoMatch", err)
	}
}

func TestQueryLogAdjustmentDisabled(t *testing.T) {
	d, err := NewQueryLog(decode.ConfigMap{"log_query_start": "false"})
	if err != nil {
		t.Fatal(err)
	}

	line := "[Fri Jun 29 21:17:58.609 2007] 0.004 sec [all/0/rel 0 (0,20)] [lj] q"
	r, err := d.Decode(line)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2007, 6, 29, 21, 17, 58, 609_000_000, time.UTC); !r.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want raw finish %v", r.Timestamp, want)
	}
}
