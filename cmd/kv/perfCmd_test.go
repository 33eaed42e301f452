package kv

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ValentinKolb/sKV/rpc/common"
	gometrics "github.com/rcrowley/go-metrics"
)

func TestMakeKeys(t *testing.T) {
	perfKeySpread = 3
	t.Cleanup(func() { perfKeySpread = 100 })

	keys := makeKeys("get")
	want := []string{"__test-get-0", "__test-get-1", "__test-get-2"}
	if len(keys) != len(want) {
		t.Fatalf("makeKeys() returned %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("makeKeys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestShouldSkip(t *testing.T) {
	perfSkip = []string{"set", " get"}
	t.Cleanup(func() { perfSkip = nil })

	tests := map[string]bool{"set": true, "get": true, "delete": false, "set-large": false}
	for test, want := range tests {
		if got := shouldSkip(test); got != want {
			t.Errorf("shouldSkip(%q) = %v, want %v", test, got, want)
		}
	}
}

func TestWriteResultsToCSV(t *testing.T) {
	timer := gometrics.NewTimer()
	for i := 0; i < 10; i++ {
		timer.Update(time.Millisecond)
	}

	results := []benchmarkResult{
		{name: "set", elapsed: time.Second, latency: timer.Snapshot(), errors: gometrics.NewCounter().Snapshot()},
		{name: "get", skipped: true},
	}
	config := &common.ClientConfig{
		TimeoutSecond: 5,
		Transport:     common.ClientTransportConfig{Endpoints: []string{"a:1", "b:2"}, RetryCount: 3},
	}

	path := filepath.Join(t.TempDir(), "results.csv")
	if err := writeResultsToCSV(path, results, config); err != nil {
		t.Fatalf("writeResultsToCSV() returned error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open CSV: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("failed to read CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("CSV has %d rows, want 3", len(rows))
	}

	set := rows[1]
	if set[0] != "set" || set[1] != "10" || set[2] != "10" || set[9] != "false" || set[10] != "a:1;b:2" {
		t.Errorf("unexpected row for set: %v", set)
	}
	if get := rows[2]; get[0] != "get" || get[9] != "true" {
		t.Errorf("unexpected row for skipped get: %v", get)
	}
}
