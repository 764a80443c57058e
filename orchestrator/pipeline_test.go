package orchestrator

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/emg-pipeline/clients"
	cfg "github.com/maastricht-university/emg-pipeline/config"
	"github.com/maastricht-university/emg-pipeline/segment"
)

// action returns a 100 Hz recording with a slow and a fast component per channel.
func action(label string, index int, durationS float64, leftRows, rightRows int) segment.ActionRecord {
	mk := func(n int, phase float64) [][]float64 {
		rate := float64(n) / durationS
		out := make([][]float64, n)
		for i := range out {
			ts := float64(i) / rate
			out[i] = make([]float64, 8)
			for j := range out[i] {
				out[i][j] = float64(j+1) * (math.Sin(2*math.Pi*0.7*ts+phase) + 0.2*math.Sin(2*math.Pi*30*ts))
			}
		}
		return out
	}
	return segment.ActionRecord{
		Label: label, Index: index,
		StartTimeS: 10, EndTimeS: 10 + durationS, DurationS: durationS,
		EMGLeft:  mk(leftRows, 0),
		EMGRight: mk(rightRows, 1),
	}
}

func writeActions(t *testing.T, dir, name string, actions ...segment.ActionRecord) {
	t.Helper()
	b, err := json.Marshal(actions)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o644))
}

func testConfig(t *testing.T) *cfg.Root {
	t.Helper()
	c, err := cfg.Load(cfg.New(), "")
	require.NoError(t, err)
	c.Paths.Data = t.TempDir()
	c.Paths.Outputs = filepath.Join(t.TempDir(), "out")
	c.Dataset.Workers = 2
	return c
}

func TestRun_BuildsDatasetAndSkipsBadInput(t *testing.T) {
	c := testConfig(t)

	silent := action("open fridge", 3, 10, 1000, 1000)
	for i := range silent.EMGRight {
		silent.EMGRight[i] = make([]float64, 8)
	}
	writeActions(t, c.Paths.Data, "emg-data-S01_1-train.json",
		action("peel potato", 0, 10, 1000, 1000),
		silent,
		action("slice bread", 4, 12, 1200, 1150),
	)
	writeActions(t, c.Paths.Data, "emg-data-S02_1-train.json",
		action("peel potato", 0, 4, 400, 400),
	)
	writeActions(t, c.Paths.Data, "emg-data-S03_1-test.json",
		action("clean plate", 0, 10, 1000, 1000),
	)
	require.NoError(t, os.WriteFile(filepath.Join(c.Paths.Data, "emg-data-S04_1-train.json"), []byte("{broken"), 0o644))

	log, hook := logtest.NewNullLogger()
	p, err := NewPipeline(c, log)
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Files)
	assert.Equal(t, 1, res.FailedFiles)
	assert.Equal(t, 4, res.Actions)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "open fridge", res.Skipped[0].Label)
	assert.Equal(t, 3, res.Skipped[0].Index)
	assert.Zero(t, res.Published)

	// 2 + 3 windows from S01_1, 1 from S02_1
	require.Equal(t, 6, res.Dataset.Len())
	wantLabels := []string{"peel potato", "peel potato", "slice bread", "slice bread", "slice bread", "peel potato"}
	for i, s := range res.Dataset.Samples() {
		assert.Equal(t, i, s.Key)
		assert.Equal(t, wantLabels[i], s.Label)
		require.NotEmpty(t, s.EMGData)
		assert.Len(t, s.EMGData[0], 16)
	}
	last, _ := res.Dataset.Get(5)
	assert.Len(t, last.EMGData, 400)

	var skippedLogged, fileLogged bool
	for _, e := range hook.AllEntries() {
		if e.Message == "skipping action" && e.Data["index"] == 3 {
			skippedLogged = true
		}
		if e.Message == "skipping unreadable file" && e.Level == logrus.ErrorLevel {
			fileLogged = true
		}
	}
	assert.True(t, skippedLogged)
	assert.True(t, fileLogged)

	b, err := os.ReadFile(res.DatasetPath)
	require.NoError(t, err)
	var onDisk []Sample
	require.NoError(t, json.Unmarshal(b, &onDisk))
	assert.Len(t, onDisk, 6)
	assert.Equal(t, filepath.Join(c.Paths.Outputs, "emg_data_preprocessed_train.json"), res.DatasetPath)

	b, err = os.ReadFile(res.ManifestPath)
	require.NoError(t, err)
	var m struct {
		Split   string    `yaml:"split"`
		Samples int       `yaml:"samples"`
		Skipped []Skipped `yaml:"skipped"`
		Config  cfg.Root  `yaml:"config"`
	}
	require.NoError(t, yaml.Unmarshal(b, &m))
	assert.Equal(t, "train", m.Split)
	assert.Equal(t, 6, m.Samples)
	assert.Len(t, m.Skipped, 1)
	assert.Equal(t, 5.0, m.Config.Signal.CutoffHz)
}

func TestRun_KeysAreStableAcrossWorkerCounts(t *testing.T) {
	build := func(workers int) []Sample {
		c := testConfig(t)
		c.Dataset.Workers = workers
		for i, name := range []string{"emg-data-S01_1-train.json", "emg-data-S01_2-train.json", "emg-data-S01_3-train.json"} {
			writeActions(t, c.Paths.Data, name, action("a"+name[9:14], i, float64(5*(i+1)), 500*(i+1), 500*(i+1)))
		}
		log, _ := logtest.NewNullLogger()
		p, err := NewPipeline(c, log)
		require.NoError(t, err)
		res, err := p.Run(context.Background())
		require.NoError(t, err)
		return res.Dataset.Samples()
	}
	assert.Equal(t, build(1), build(3))
}

func TestRun_WarnsOnRateSkew(t *testing.T) {
	c := testConfig(t)
	writeActions(t, c.Paths.Data, "emg-data-S01_1-train.json", action("stir", 1, 10, 1000, 800))

	log, hook := logtest.NewNullLogger()
	p, err := NewPipeline(c, log)
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Dataset.Len())

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "left and right streams disagree on sampling rate" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestRun_PublishesInBatches(t *testing.T) {
	var (
		mu      sync.Mutex
		batches []int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req clients.IngestReq
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		batches = append(batches, len(req.Samples))
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(clients.IngestResp{Accepted: len(req.Samples)})
	}))
	defer srv.Close()

	c := testConfig(t)
	c.Services.Features.URL = srv.URL
	c.Services.Features.BatchSize = 2
	writeActions(t, c.Paths.Data, "emg-data-S01_1-train.json",
		action("pour", 0, 10, 1000, 1000),
		action("pour", 1, 15, 1500, 1500),
	)

	log, _ := logtest.NewNullLogger()
	p, err := NewPipeline(c, log)
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Published)
	assert.Equal(t, []int{2, 2, 1}, batches)
}

func TestRun_PublishFailureKeepsDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testConfig(t)
	c.Services.Features.URL = srv.URL
	writeActions(t, c.Paths.Data, "emg-data-S01_1-train.json", action("pour", 0, 10, 1000, 1000))

	log, _ := logtest.NewNullLogger()
	p, err := NewPipeline(c, log)
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.Error(t, err)
	require.NotNil(t, res)
	assert.FileExists(t, res.DatasetPath)
}

func TestRun_CancelledContext(t *testing.T) {
	c := testConfig(t)
	writeActions(t, c.Paths.Data, "emg-data-S01_1-train.json", action("pour", 0, 10, 1000, 1000))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	log, _ := logtest.NewNullLogger()
	p, err := NewPipeline(c, log)
	require.NoError(t, err)
	_, err = p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_MissingDataDir(t *testing.T) {
	c := testConfig(t)
	c.Paths.Data = filepath.Join(c.Paths.Data, "nope")
	log, _ := logtest.NewNullLogger()
	p, err := NewPipeline(c, log)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	assert.Error(t, err)
}
