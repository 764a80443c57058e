package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/emg-pipeline/config"
)

type app struct {
	cfgFile string
}

// NewRootCmd assembles the emg command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "emg",
		Short:         "Segment dual-sensor EMG recordings into filtered, normalized windows",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default config/$CONFIG_ENV/config.yaml, then ./config.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(a.buildCmd(), a.segmentCmd(), a.configCmd())
	return root
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// signalFlags registers the filter and window settings shared by build and
// segment.
func signalFlags(c *cobra.Command) {
	f := c.Flags()
	f.Float64("cutoff", 0, "low-pass cutoff in Hz")
	f.Int("order", 0, "Butterworth filter order")
	f.Float64("segment", 0, "window length in seconds")
	f.Float64("overlap", 0, "overlap between consecutive windows in seconds")
}

// load resolves configuration for c: flags, then EMG_* env, then the
// config file, then defaults.
func (a *app) load(c *cobra.Command) (*cfg.Root, *logrus.Logger, error) {
	v := cfg.New()
	if err := cfg.BindFlags(v, c.Flags()); err != nil {
		return nil, nil, err
	}
	conf, err := cfg.Load(v, a.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(conf.Pipeline.LogLvl, c.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	return conf, log, nil
}

func newLogger(level string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}
