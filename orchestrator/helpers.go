package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maastricht-university/emg-pipeline/segment"
)

const sourcePrefix = "emg-data-"

// parseSourceName splits names of the form emg-data-<session>-<split>.json.
func parseSourceName(name string) (session, split string, ok bool) {
	if !strings.HasPrefix(name, sourcePrefix) || filepath.Ext(name) != ".json" {
		return "", "", false
	}
	parts := strings.Split(strings.TrimSuffix(name, filepath.Ext(name)), "-")
	if len(parts) != 4 || parts[2] == "" || parts[3] == "" {
		return "", "", false
	}
	return parts[2], parts[3], true
}

// Discover lists the source files in dir that belong to split, sorted by
// name so dataset keys are reproducible.
func Discover(dir, split string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", dir, err)
	}
	var out []Source
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		session, s, ok := parseSourceName(e.Name())
		if !ok || s != split {
			continue
		}
		out = append(out, Source{Path: filepath.Join(dir, e.Name()), Session: session, Split: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// LoadActions decodes a JSON array of action records.
func LoadActions(path string) ([]segment.ActionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []segment.ActionRecord
	if err := json.NewDecoder(f).Decode(&out); err != nil {
		return nil, fmt.Errorf("actions decode %s: %w", filepath.Base(path), err)
	}
	return out, nil
}
