package orchestrator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/emg-pipeline/clients"
	cfg "github.com/maastricht-university/emg-pipeline/config"
	"github.com/maastricht-university/emg-pipeline/dsp"
	"github.com/maastricht-university/emg-pipeline/segment"
)

type Pipeline struct {
	cfg  *cfg.Root
	seg  *segment.Segmenter
	log  logrus.FieldLogger
	http *clients.HTTP
}

func NewPipeline(c *cfg.Root, log logrus.FieldLogger) (*Pipeline, error) {
	pre, err := dsp.NewPreprocessor(c.Signal.CutoffHz, c.Signal.FilterOrder)
	if err != nil {
		return nil, err
	}
	seg, err := segment.New(c.SegmentOptions(), pre)
	if err != nil {
		return nil, err
	}
	return &Pipeline{cfg: c, seg: seg, log: log, http: clients.NewHTTP()}, nil
}

// fileResult is what one worker produces for one source file.
type fileResult struct {
	samples []segment.SubactionRecord
	actions int
	skipped []Skipped
	failed  bool
}

// Run builds the dataset for the configured split. Files are segmented
// concurrently, but samples are keyed in file order then record order so
// the output does not depend on scheduling. Bad records and unreadable
// files are logged and skipped.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	sources, err := Discover(p.cfg.Paths.Data, p.cfg.Dataset.Split)
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{"dir": p.cfg.Paths.Data, "split": p.cfg.Dataset.Split, "files": len(sources)}).Info("sources discovered")

	results := make([]fileResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Dataset.Workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.processFile(gctx, src)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Dataset: NewDataset(), Files: len(sources)}
	for _, r := range results {
		if r.failed {
			res.FailedFiles++
		}
		res.Actions += r.actions
		res.Skipped = append(res.Skipped, r.skipped...)
		for _, s := range r.samples {
			res.Dataset.Add(s.Label, s.EMGData)
		}
	}

	res.DatasetPath, res.ManifestPath, err = persist(p.cfg.Paths.Outputs, p.cfg, res)
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{
		"samples": res.Dataset.Len(),
		"actions": res.Actions,
		"skipped": len(res.Skipped),
		"path":    res.DatasetPath,
	}).Info("dataset written")

	if p.cfg.Services.Features.URL != "" {
		n, err := p.publish(ctx, res.Dataset)
		res.Published = n
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (p *Pipeline) processFile(ctx context.Context, src Source) fileResult {
	log := p.log.WithField("file", src.Path)
	actions, err := LoadActions(src.Path)
	if err != nil {
		log.WithError(err).Error("skipping unreadable file")
		return fileResult{failed: true}
	}
	log.WithField("actions", len(actions)).Debug("processing file")

	out := fileResult{actions: len(actions)}
	for _, a := range actions {
		if ctx.Err() != nil {
			return out
		}
		alog := log.WithFields(logrus.Fields{"label": a.Label, "index": a.Index})
		if skew := segment.RateSkew(a); skew > p.cfg.Dataset.MaxRateSkew {
			alog.WithFields(logrus.Fields{"skew": skew, "left": len(a.EMGLeft), "right": len(a.EMGRight)}).
				Warn("left and right streams disagree on sampling rate")
		}

		seq, err := p.seg.Segment(a)
		if err != nil {
			alog.WithError(err).Warn("skipping action")
			out.skipped = append(out.skipped, Skipped{File: src.Path, Label: a.Label, Index: a.Index, Reason: err.Error()})
			continue
		}
		n := 0
		for sub := range seq {
			out.samples = append(out.samples, sub)
			n++
		}
		alog.WithField("windows", n).Debug("action segmented")
	}
	return out
}

// publish sends the dataset to the feature service in batches.
func (p *Pipeline) publish(ctx context.Context, ds *Dataset) (int, error) {
	url := p.cfg.Services.Features.URL
	size := p.cfg.Services.Features.BatchSize
	all := ds.Samples()
	sent := 0
	for lo := 0; lo < len(all); lo += size {
		hi := min(lo+size, len(all))
		batch := make([]clients.IngestSample, 0, hi-lo)
		for _, s := range all[lo:hi] {
			batch = append(batch, clients.IngestSample{Key: s.Key, Label: s.Label, EMGData: s.EMGData})
		}
		resp, err := p.http.Ingest(ctx, url, clients.IngestReq{Split: p.cfg.Dataset.Split, Samples: batch})
		if err != nil {
			return sent, fmt.Errorf("publish samples %d-%d: %w", lo, hi-1, err)
		}
		sent += resp.Accepted
	}
	p.log.WithFields(logrus.Fields{"url": url, "accepted": sent}).Info("dataset published")
	return sent, nil
}
