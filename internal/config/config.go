// internal/config/config.go
// Package: config
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/mwiater/benchviolin/internal/bench"
	"github.com/mwiater/benchviolin/internal/report"
)

// EnvPrefix is prepended to environment variable overrides, so
// BENCHVIOLIN_SESSION_EPOCHS sets session.epochs.
const EnvPrefix = "BENCHVIOLIN"

// ErrInvalid is returned for settings that cannot be applied.
var ErrInvalid = errors.New("invalid configuration")

// Config is the effective configuration of a run.
type Config struct {
	Session bench.Config   `json:"session"`
	Report  report.Options `json:"report"`

	// HTML report destination, empty for none.
	Output string `json:"output"`
	// JSON export destination, empty for none.
	JSON string `json:"json"`
	// Suite name pattern.
	Filter string `json:"filter"`

	Log Log `json:"log"`
}

// Log selects the level and encoding of the structured logger.
type Log struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text or json
}

// SessionDefaults is the session configuration the command line starts
// from: 100 warm-up calls, at least 100000 iterations per epoch and hardware
// counters where available.
func SessionDefaults() bench.Config {
	return bench.DefaultConfig().
		WithWarmup(100).
		WithMinEpochIterations(100_000).
		WithPerformanceCounters(true)
}

// SetDefaults registers the default for every key.
func SetDefaults(v *viper.Viper) {
	def := SessionDefaults()
	opts := report.DefaultOptions()

	v.SetDefault("session.warmup", def.Warmup)
	v.SetDefault("session.epochs", def.Epochs)
	v.SetDefault("session.min_epoch_iterations", def.MinEpochIterations)
	v.SetDefault("session.min_epoch_time", def.MinEpochTime)
	v.SetDefault("session.performance_counters", def.PerformanceCounters)

	v.SetDefault("report.output", "")
	v.SetDefault("report.plot_type", opts.PlotType)
	v.SetDefault("report.show_legend", opts.ShowLegend)
	v.SetDefault("report.show_epochs", opts.ShowEpochs)
	v.SetDefault("report.range_mode", opts.RangeMode)
	v.SetDefault("report.json", "")

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetDefault("run.filter", "")
}

// Init registers defaults and environment overrides on v. When path is set
// the file is read as well.
func Init(v *viper.Viper, path string) error {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	return nil
}

// New returns a fresh viper instance prepared by Init.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	if err := Init(v, path); err != nil {
		return nil, err
	}
	return v, nil
}

// Load converts the settings held by v and validates them.
func Load(v *viper.Viper) (Config, error) {
	session := bench.DefaultConfig().
		WithWarmup(v.GetInt("session.warmup")).
		WithEpochs(v.GetInt("session.epochs")).
		WithMinEpochIterations(v.GetInt64("session.min_epoch_iterations")).
		WithMinEpochTime(v.GetDuration("session.min_epoch_time")).
		WithPerformanceCounters(v.GetBool("session.performance_counters"))
	if err := session.Validate(); err != nil {
		return Config{}, err
	}

	opts := report.Options{
		PlotType:   strings.ToLower(v.GetString("report.plot_type")),
		ShowLegend: v.GetBool("report.show_legend"),
		ShowEpochs: v.GetBool("report.show_epochs"),
		RangeMode:  v.GetString("report.range_mode"),
	}
	switch opts.PlotType {
	case report.PlotViolin, report.PlotBox:
	default:
		return Config{}, fmt.Errorf("%w: report.plot_type %q, want %q or %q", ErrInvalid, opts.PlotType, report.PlotViolin, report.PlotBox)
	}

	lg := Log{
		Level:  strings.ToLower(v.GetString("log.level")),
		Format: strings.ToLower(v.GetString("log.format")),
	}
	if _, err := lg.level(); err != nil {
		return Config{}, err
	}
	if lg.Format != "text" && lg.Format != "json" {
		return Config{}, fmt.Errorf("%w: log.format %q, want text or json", ErrInvalid, lg.Format)
	}

	return Config{
		Session: session,
		Report:  opts,
		Output:  v.GetString("report.output"),
		JSON:    v.GetString("report.json"),
		Filter:  v.GetString("run.filter"),
		Log:     lg,
	}, nil
}

func (l Log) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, l.Level)
	}
	return lvl, nil
}

// NewLogger builds the logger described by l, writing to w.
func (l Log) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := l.level()
	if err != nil {
		lvl = slog.LevelWarn
	}
	hopts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}
