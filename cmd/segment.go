package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/emg-pipeline/dsp"
	"github.com/maastricht-university/emg-pipeline/orchestrator"
	"github.com/maastricht-university/emg-pipeline/segment"
)

func (a *app) segmentCmd() *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "segment <file.json>",
		Short: "Show how each action of one file is cut into windows",
		Long: `Prints one row per planned window. Label bounds advance by
segment-overlap seconds while row bounds split the longer stream evenly,
so the two only line up approximately. Windows with 0 rows are dropped
from the dataset.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			conf, log, err := a.load(c)
			if err != nil {
				return err
			}
			pre, err := dsp.NewPreprocessor(conf.Signal.CutoffHz, conf.Signal.FilterOrder)
			if err != nil {
				return err
			}
			seg, err := segment.New(conf.SegmentOptions(), pre)
			if err != nil {
				return err
			}
			actions, err := orchestrator.LoadActions(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(c.OutOrStdout())
				for _, act := range actions {
					seq, err := seg.Segment(act)
					if err != nil {
						log.WithError(err).WithField("index", act.Index).Warn("skipping action")
						continue
					}
					for sub := range seq {
						if err := enc.Encode(sub); err != nil {
							return err
						}
					}
				}
				return nil
			}

			tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tLABEL\tWIN\tSTART_S\tEND_S\tROW_RANGE\tLEFT\tRIGHT\tKEPT")
			for _, act := range actions {
				if _, err := seg.Segment(act); err != nil {
					fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\t-\t%d\t%d\terror: %v\n", act.Index, act.Label, len(act.EMGLeft), len(act.EMGRight), err)
					continue
				}
				for _, w := range segment.Plan(act, seg.Options(), len(act.EMGLeft), len(act.EMGRight)) {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%.3f\t%.3f\t[%d,%d)\t%d\t%d\t%d\n",
						act.Index, act.Label, w.I, w.StartTimeS, w.EndTimeS, w.RowStart, w.RowEnd, w.LeftRows, w.RightRows, w.Rows)
				}
			}
			return tw.Flush()
		},
	}
	signalFlags(c)
	c.Flags().BoolVar(&asJSON, "json", false, "write the subaction records as JSON lines instead of a table")
	return c
}
