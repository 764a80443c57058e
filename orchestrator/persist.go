package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	cfg "github.com/maastricht-university/emg-pipeline/config"
)

// Manifest summarises one dataset build next to the dataset file.
type Manifest struct {
	Split       string    `yaml:"split"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Dataset     string    `yaml:"dataset"`
	Samples     int       `yaml:"samples"`
	Files       int       `yaml:"files"`
	FailedFiles int       `yaml:"failed_files"`
	Actions     int       `yaml:"actions"`
	Skipped     []Skipped `yaml:"skipped,omitempty"`
	Config      *cfg.Root `yaml:"config"`
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func persist(outputsRoot string, c *cfg.Root, res *Result) (datasetPath, manifestPath string, err error) {
	if err = os.MkdirAll(outputsRoot, 0o755); err != nil {
		return "", "", fmt.Errorf("persist: %w", err)
	}
	split := c.Dataset.Split
	datasetPath = filepath.Join(outputsRoot, "emg_data_preprocessed_"+split+".json")
	manifestPath = filepath.Join(outputsRoot, "manifest_"+split+".yaml")

	samples := res.Dataset.Samples()
	if samples == nil {
		samples = []Sample{}
	}
	if err = writeJSON(datasetPath, samples); err != nil {
		return "", "", fmt.Errorf("persist dataset: %w", err)
	}

	m := Manifest{
		Split:       split,
		GeneratedAt: time.Now().UTC(),
		Dataset:     filepath.Base(datasetPath),
		Samples:     res.Dataset.Len(),
		Files:       res.Files,
		FailedFiles: res.FailedFiles,
		Actions:     res.Actions,
		Skipped:     res.Skipped,
		Config:      c,
	}
	if err = writeYAML(manifestPath, m); err != nil {
		return "", "", fmt.Errorf("persist manifest: %w", err)
	}
	return datasetPath, manifestPath, nil
}
