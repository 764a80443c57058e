package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/emg-pipeline/orchestrator"
)

func (a *app) buildCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "build",
		Short: "Segment every action of one split and write the dataset",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			conf, log, err := a.load(c)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"cutoff_hz": conf.Signal.CutoffHz,
				"order":     conf.Signal.FilterOrder,
				"segment_s": conf.Segmentation.SegmentDurationS,
				"overlap_s": conf.Segmentation.OverlapS,
			}).Infof("%s starting", conf.Pipeline.Name)

			p, err := orchestrator.NewPipeline(conf, log)
			if err != nil {
				return err
			}
			res, err := p.Run(c.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "samples=%d actions=%d skipped=%d failed_files=%d dataset=%s\n",
				res.Dataset.Len(), res.Actions, len(res.Skipped), res.FailedFiles, res.DatasetPath)
			return nil
		},
	}
	signalFlags(c)
	f := c.Flags()
	f.String("data", "", "directory holding emg-data-<session>-<split>.json files")
	f.String("out", "", "output directory")
	f.String("split", "", "split to build (train, test)")
	f.Int("workers", 0, "files processed concurrently")
	f.String("features-url", "", "feature service base URL; empty disables publishing")
	return c
}
