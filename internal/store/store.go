// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store reads and writes journal work files. Each journal is one
// JSON file named [issn].json holding a pretty-printed array of works.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/journal-engine/pkg/types"
)

// Load reads a journal file and returns its works. A file holding a
// single object instead of an array is wrapped into a one-element slice.
func Load(path string) ([]types.Work, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var works []types.Work
	if err := json.Unmarshal(data, &works); err != nil {
		var single types.Work
		if singleErr := json.Unmarshal(data, &single); singleErr == nil {
			return []types.Work{single}, nil
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return works, nil
}

// Save writes works to path as a pretty-printed UTF-8 JSON array. The
// write goes to a temp file in the same directory and is renamed into
// place, so a crash mid-write never leaves a torn file behind.
func Save(path string, works []types.Work) error {
	if works == nil {
		works = []types.Work{}
	}
	data, err := json.MarshalIndent(works, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding works: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".journal-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ListJournalFiles returns the sorted base names of the JSON files in dir.
// A missing directory is not an error; it lists as empty.
func ListJournalFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
