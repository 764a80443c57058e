package orchestrator

import "slices"

// Source is one input file of action records.
type Source struct {
	Path    string
	Session string // "S04_1"
	Split   string // "train" / "test"
}

// Sample is the flattened form of a subaction kept in the dataset; timing
// metadata is dropped.
type Sample struct {
	Key     int         `json:"key"`
	Label   string      `json:"label"`
	EMGData [][]float64 `json:"emg_data"`
}

// Dataset holds samples keyed by insertion order. Keys start at 0 and are
// independent of the action a sample came from.
type Dataset struct {
	samples []Sample
}

func NewDataset() *Dataset { return &Dataset{} }

// Add stores a sample under the next free key and returns that key.
func (d *Dataset) Add(label string, emg [][]float64) int {
	key := len(d.samples)
	d.samples = append(d.samples, Sample{Key: key, Label: label, EMGData: emg})
	return key
}

func (d *Dataset) Len() int { return len(d.samples) }

func (d *Dataset) Get(key int) (Sample, bool) {
	if key < 0 || key >= len(d.samples) {
		return Sample{}, false
	}
	return d.samples[key], true
}

// Samples returns the samples in key order. The slice is a copy; the
// EMGData rows are shared with the dataset.
func (d *Dataset) Samples() []Sample { return slices.Clone(d.samples) }

// Skipped records an action that failed preprocessing or segmentation.
type Skipped struct {
	File   string `json:"file" yaml:"file"`
	Label  string `json:"label" yaml:"label"`
	Index  int    `json:"index" yaml:"index"`
	Reason string `json:"reason" yaml:"reason"`
}

type Result struct {
	Dataset      *Dataset
	Files        int
	FailedFiles  int
	Actions      int
	Skipped      []Skipped
	DatasetPath  string
	ManifestPath string
	Published    int
}
