package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	r := RunResult{
		Plan:       "uniform",
		Sigbits:    5,
		Workers:    9,
		Samples:    1_000_000,
		Population: 9_000_000,
		Buckets:    123,
		Bytes:      4096,
		NsPerOp:    18.5,
		P50:        499_000,
		P90:        899_000,
		P99:        989_000,
		Elapsed:    2 * time.Second,
	}
	if err := AppendCSV(path, r); err != nil {
		t.Fatalf("AppendCSV: %v", err)
	}
	if err := AppendCSV(path, r); err != nil {
		t.Fatalf("AppendCSV second row: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading back CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus two data rows", len(rows))
	}
	if rows[0][0] != "PLAN" {
		t.Errorf("header starts with %q, want PLAN", rows[0][0])
	}
	if rows[1][0] != "uniform" || rows[1][1] != "5" {
		t.Errorf("data row = %v", rows[1])
	}
	if len(rows[1]) != len(rows[0]) {
		t.Errorf("data row has %d fields, header has %d", len(rows[1]), len(rows[0]))
	}
}
