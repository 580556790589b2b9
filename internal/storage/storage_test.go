package storage

import (
	"os"
	"testing"
	"time"

	"github.com/corvidchess/corvid/internal/coordinator"
)

func TestDataPaths(t *testing.T) {
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Fatal("GetDataDir returned empty path")
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("data directory was not created: %s", dataDir)
	}
}

func sampleResult(nodes uint64) coordinator.BenchResult {
	return coordinator.BenchResult{
		Timestamp: time.Now(),
		Depth:     coordinator.BenchDepth,
		TTSizeMB:  coordinator.BenchTTSizeMB,
		Positions: []coordinator.BenchPositionResult{
			{FEN: "startpos", Nodes: nodes},
		},
		TotalNodes: nodes,
	}
}

func TestLedgerRecordAndLatest(t *testing.T) {
	dbDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dbDir)

	l, err := OpenLedger()
	if err != nil {
		t.Fatalf("OpenLedger failed: %v", err)
	}
	defer l.Close()

	r := sampleResult(1000)
	if _, ok, err := l.Latest(r); err != nil {
		t.Fatalf("Latest failed: %v", err)
	} else if ok {
		t.Fatal("expected no prior history for a fresh ledger")
	}

	if err := l.Record(r); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	r2 := sampleResult(1200)
	prev, ok, err := l.Latest(r2)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a prior result after one Record call")
	}
	if prev.TotalNodes != 1000 {
		t.Fatalf("prev.TotalNodes = %d, want 1000", prev.TotalNodes)
	}
}

func TestLedgerSeparatesConfigurations(t *testing.T) {
	dbDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dbDir)

	l, err := OpenLedger()
	if err != nil {
		t.Fatalf("OpenLedger failed: %v", err)
	}
	defer l.Close()

	a := sampleResult(500)
	if err := l.Record(a); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	b := sampleResult(500)
	b.Depth = a.Depth + 1 // different configuration, separate history bucket
	if _, ok, err := l.Latest(b); err != nil {
		t.Fatalf("Latest failed: %v", err)
	} else if ok {
		t.Fatal("expected a different depth to have no shared history")
	}
}
