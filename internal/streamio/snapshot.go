package streamio

import (
	"encoding/json"
	"fmt"
	"os"
)

// ValidateSnapshot checks that a file parses as a snapshot and that every
// entry has a stream name. Returns an error describing the first problem.
func ValidateSnapshot(path string) error {
	_, err := ReadSnapshot(path)
	return err
}

// ReadSnapshot loads and validates a snapshot file.
func ReadSnapshot(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	for i, entry := range entries {
		if entry.Stream.Name == "" {
			return nil, fmt.Errorf("invalid snapshot: entry %d has no stream name", i+1)
		}
	}

	return entries, nil
}

// WriteSnapshot writes entries to path as indented JSON.
func WriteSnapshot(path string, entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
