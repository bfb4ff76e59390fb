package input

import (
	"strings"
	"testing"
)

func collect(t *testing.T, content string, start StartFunc) []string {
	t.Helper()
	out := make(chan string, 64)
	if err := Stream(strings.NewReader(content), start, out); err != nil {
		t.Fatal(err)
	}
	close(out)
	var records []string
	for r := range out {
		records = append(records, r)
	}
	return records
}

func TestStreamLineRecords(t *testing.T) {
	records := collect(t, "one\ntwo\nthree\n", nil)
	want := []string{"one", "two", "three"}
	if len(records) != len(want) {
		t.Fatalf("records = %v", records)
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("records[%d] = %q, want %q", i, records[i], want[i])
		}
	}
}

func TestStreamEmptyInput(t *testing.T) {
	if records := collect(t, "", nil); len(records) != 0 {
		t.Errorf("records = %v, want none", records)
	}
}

func TestStreamGroupsMultiLineRecords(t *testing.T) {
	content := "# Time: 1\nSELECT 1;\n# Time: 2\nSELECT 2\nFROM t;\n"
	start := func(line, buffered string) bool {
		return strings.HasPrefix(line, "# Time: ")
	}

	records := collect(t, content, start)

	want := []string{
		"# Time: 1\nSELECT 1;",
		"# Time: 2\nSELECT 2\nFROM t;",
	}
	if len(records) != len(want) {
		t.Fatalf("records = %q", records)
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("records[%d] = %q, want %q", i, records[i], want[i])
		}
	}
}

func TestStreamLeadingPartialRecord(t *testing.T) {
	// Lines before the first boundary still form a record; the decoder
	// decides whether it matches.
	content := "orphan line\n# Time: 1\nSELECT 1;\n"
	start := func(line, buffered string) bool {
		return strings.HasPrefix(line, "# Time: ")
	}

	records := collect(t, content, start)
	if len(records) != 2 || records[0] != "orphan line" {
		t.Errorf("records = %q", records)
	}
}
