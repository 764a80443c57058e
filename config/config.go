package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/maastricht-university/emg-pipeline/dsp"
	"github.com/maastricht-university/emg-pipeline/segment"
)

type Service struct {
	URL       string `mapstructure:"url" yaml:"url"`
	BatchSize int    `mapstructure:"batch_size" yaml:"batch_size"`
}
type Services struct {
	Features Service `mapstructure:"features" yaml:"features"`
}
type Signal struct {
	CutoffHz    float64 `mapstructure:"cutoff_hz" yaml:"cutoff_hz"`
	FilterOrder int     `mapstructure:"filter_order" yaml:"filter_order"`
}
type Segmentation struct {
	SegmentDurationS float64 `mapstructure:"segment_duration_s" yaml:"segment_duration_s"`
	OverlapS         float64 `mapstructure:"overlap_s" yaml:"overlap_s"`
}
type Dataset struct {
	Split       string  `mapstructure:"split" yaml:"split"`
	Workers     int     `mapstructure:"workers" yaml:"workers"`
	MaxRateSkew float64 `mapstructure:"max_rate_skew" yaml:"max_rate_skew"`
}
type Root struct {
	Pipeline struct {
		Name   string `mapstructure:"name" yaml:"name"`
		LogLvl string `mapstructure:"log_level" yaml:"log_level"`
	} `mapstructure:"pipeline" yaml:"pipeline"`
	Signal       Signal       `mapstructure:"signal" yaml:"signal"`
	Segmentation Segmentation `mapstructure:"segmentation" yaml:"segmentation"`
	Dataset      Dataset      `mapstructure:"dataset" yaml:"dataset"`
	Paths        struct {
		Data    string `mapstructure:"data" yaml:"data"`
		Outputs string `mapstructure:"outputs" yaml:"outputs"`
	} `mapstructure:"paths" yaml:"paths"`
	Services Services `mapstructure:"services" yaml:"services"`
}

// flagKeys maps CLI flag names onto configuration keys.
var flagKeys = map[string]string{
	"log-level":    "pipeline.log_level",
	"cutoff":       "signal.cutoff_hz",
	"order":        "signal.filter_order",
	"segment":      "segmentation.segment_duration_s",
	"overlap":      "segmentation.overlap_s",
	"split":        "dataset.split",
	"workers":      "dataset.workers",
	"data":         "paths.data",
	"out":          "paths.outputs",
	"features-url": "services.features.url",
}

// New returns a viper instance carrying every default and reading EMG_*
// environment overrides (EMG_SIGNAL_CUTOFF_HZ, EMG_DATASET_SPLIT, ...).
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("pipeline.name", "emg-pipeline")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("signal.cutoff_hz", dsp.DefaultCutoffHz)
	v.SetDefault("signal.filter_order", dsp.DefaultOrder)
	v.SetDefault("segmentation.segment_duration_s", segment.DefaultSegmentDurationS)
	v.SetDefault("segmentation.overlap_s", segment.DefaultOverlapS)
	v.SetDefault("dataset.split", "train")
	v.SetDefault("dataset.workers", 4)
	v.SetDefault("dataset.max_rate_skew", 0.05)
	v.SetDefault("paths.data", "./EMG_data")
	v.SetDefault("paths.outputs", "./outputs")
	v.SetDefault("services.features.url", "")
	v.SetDefault("services.features.batch_size", 256)

	v.SetEnvPrefix("EMG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds whichever known flags fs defines, so a flag set on the
// command line wins over env, file and defaults.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads path if given, otherwise the first of
// config/<CONFIG_ENV>/config.yaml and config.yaml that exists. With no
// file at all the defaults apply.
func Load(v *viper.Viper, path string) (*Root, error) {
	if path == "" {
		path = guess()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	for _, p := range []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate checks the relationships between settings that would otherwise
// only fail once the first action is processed.
func (r *Root) Validate() error {
	var errs []error
	if _, err := dsp.NewPreprocessor(r.Signal.CutoffHz, r.Signal.FilterOrder); err != nil {
		errs = append(errs, err)
	}
	if err := r.SegmentOptions().Validate(); err != nil {
		errs = append(errs, err)
	}
	if r.Dataset.Split == "" {
		errs = append(errs, errors.New("dataset.split is empty"))
	}
	if r.Dataset.Workers < 1 {
		errs = append(errs, fmt.Errorf("dataset.workers %d < 1", r.Dataset.Workers))
	}
	if r.Dataset.MaxRateSkew < 0 {
		errs = append(errs, fmt.Errorf("dataset.max_rate_skew %g < 0", r.Dataset.MaxRateSkew))
	}
	if r.Services.Features.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("services.features.batch_size %d < 1", r.Services.Features.BatchSize))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (r *Root) SegmentOptions() segment.Options {
	return segment.Options{
		SegmentDurationS: r.Segmentation.SegmentDurationS,
		OverlapS:         r.Segmentation.OverlapS,
	}
}
