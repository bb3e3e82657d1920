package storage

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestEmptyJournal(t *testing.T) {
	j := openTestJournal(t)
	stats, err := j.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Stats{}, stats); diff != "" {
		t.Errorf("fresh stats (-want +got):\n%s", diff)
	}
	recs, err := j.Recent(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Errorf("fresh journal has %d records", len(recs))
	}
}

func TestRecordUpdatesStats(t *testing.T) {
	j := openTestJournal(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	records := []SearchRecord{
		{FEN: "a", BestMove: "e2e4", Score: 20, Depth: 6, Nodes: 1000, Elapsed: time.Second, Outcome: "move", At: at},
		{FEN: "b", BestMove: "0000", Score: -29000, Depth: 0, Nodes: 0, Outcome: "checkmate", At: at},
		{FEN: "c", BestMove: "0000", Depth: 0, Outcome: "stalemate", At: at},
		{FEN: "d", BestMove: "g1f3", Score: 5, Depth: 9, Nodes: 3000, Elapsed: time.Second, Outcome: "move", At: at},
	}
	for _, rec := range records {
		if err := j.Record(rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	stats, err := j.Stats()
	if err != nil {
		t.Fatal(err)
	}
	want := Stats{Searches: 4, Checkmates: 1, Stalemates: 1, Nodes: 4000, Time: 2 * time.Second, MaxDepth: 9}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
	if got := stats.NPS(); got != 2000 {
		t.Errorf("NPS = %d, want 2000", got)
	}

	recent, err := j.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]SearchRecord{records[3], records[2]}, recent); diff != "" {
		t.Errorf("recent (-want +got):\n%s", diff)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	j, err := Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := j.Record(SearchRecord{FEN: "x", BestMove: "e2e4", Depth: 3, Outcome: "move"}); err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	j, err = Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	stats, err := j.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Searches != 1 || stats.MaxDepth != 3 {
		t.Errorf("stats after reopen = %+v", stats)
	}
}
