package streamio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streams.json")
	want := sampleEntries()

	if err := WriteSnapshot(path, want); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("entry count = %d, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i].Stream != want[i].Stream {
			t.Errorf("entry %d stream = %+v, want %+v", i, got[i].Stream, want[i].Stream)
		}
		if len(got[i].Filters) != len(want[i].Filters) {
			t.Errorf("entry %d filter count = %d, want %d", i, len(got[i].Filters), len(want[i].Filters))
		}
	}
}

func TestReadSnapshotRejectsMissingName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streams.json")
	payload := `[{"stream": {"queries": "[\"involves:alice\"]"}, "filters": []}]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadSnapshot(path); err == nil {
		t.Fatal("expected error for entry without stream name")
	}
}

func TestReadSnapshotRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streams.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ValidateSnapshot(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReadSnapshotMissingFile(t *testing.T) {
	if _, err := ReadSnapshot(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
