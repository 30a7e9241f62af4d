// Package config resolves the settings of the steptrace tools.
//
// Settings are layered, lowest precedence first: built-in defaults, a YAML
// file, a .env file, STEPTRACE_* environment variables, and finally the
// command line flags the user set explicitly.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/steptrace/units"
	"github.com/sarchlab/steptrace/verbose"
)

// EnvPrefix prefixes all environment variables, e.g. STEPTRACE_VERBOSE.
const EnvPrefix = "STEPTRACE"

// DefaultDotEnv is the .env file looked up when none is given. It is fine
// for it not to exist.
const DefaultDotEnv = ".env"

// Settings holds all the settings of a steptrace run.
type Settings struct {
	Trace     TraceSettings     `yaml:"trace"`
	Run       RunSettings       `yaml:"run"`
	Recording RecordingSettings `yaml:"recording"`
	Monitor   MonitorSettings   `yaml:"monitor"`
	Log       LogSettings       `yaml:"log"`
}

// TraceSettings selects what the stepping tracer prints.
type TraceSettings struct {
	Verbosity        int     `yaml:"verbosity"`
	EkinThresholdGeV float64 `yaml:"ekin_gev"`
	EventIDs         []int   `yaml:"events"`
	TrackIDs         []int   `yaml:"tracks"`
}

// RunSettings configures the demonstration host.
type RunSettings struct {
	Events           int             `yaml:"events"`
	Workers          int             `yaml:"workers"`
	Seed             uint64          `yaml:"seed"`
	PrimaryEnergyGeV float64         `yaml:"energy_gev"`
	Particle         string          `yaml:"particle"`
	Layers           []LayerSettings `yaml:"layers"`
}

// LayerSettings describes one slab of the demonstration geometry.
type LayerSettings struct {
	Name                string  `yaml:"name"`
	ThicknessCm         float64 `yaml:"thickness_cm"`
	InteractionLengthCm float64 `yaml:"interaction_length_cm"`
	IonisationMeVPerCm  float64 `yaml:"ionisation_mev_per_cm"`
}

// RecordingSettings configures the SQLite notification recording.
type RecordingSettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitorSettings configures the HTTP monitor.
type MonitorSettings struct {
	Enabled     bool `yaml:"enabled"`
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open_browser"`
}

// LogSettings configures the tool logger.
type LogSettings struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Trace: TraceSettings{
			Verbosity:        1,
			EkinThresholdGeV: 1.0,
		},
		Run: RunSettings{
			Events:           1,
			Workers:          1,
			Seed:             1,
			PrimaryEnergyGeV: 10,
			Particle:         "e-",
			Layers: []LayerSettings{
				{Name: "Tracker", ThicknessCm: 100, InteractionLengthCm: 300,
					IonisationMeVPerCm: 0.2},
				{Name: "ECAL", ThicknessCm: 25, InteractionLengthCm: 1.8,
					IonisationMeVPerCm: 12},
				{Name: "HCAL", ThicknessCm: 120, InteractionLengthCm: 17,
					IonisationMeVPerCm: 11},
			},
		},
		Monitor: MonitorSettings{
			Port: 0,
		},
		Log: LogSettings{
			Level:       "info",
			Development: true,
		},
	}
}

// Sources names the files the settings are read from. Empty fields are
// skipped, except that DotEnv falls back to DefaultDotEnv.
type Sources struct {
	File   string
	DotEnv string
}

// Load resolves settings from defaults, the YAML file, the .env file and
// the environment. Flags are applied separately with Flags.Apply.
func Load(src Sources) (*Settings, error) {
	s := Default()

	if src.File != "" {
		if err := s.loadYAML(src.File); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(src.DotEnv); err != nil {
		return nil, err
	}

	if err := s.loadEnv(); err != nil {
		return nil, err
	}

	return s, nil
}

// environment lists the variables read from the environment. A nil field
// means the variable is not set.
type environment struct {
	Verbose        *int     `split_words:"true"`
	EkinGev        *float64 `split_words:"true"`
	TraceEvents    *[]int   `split_words:"true"`
	TraceTracks    *[]int   `split_words:"true"`
	NumEvents      *int     `split_words:"true"`
	Workers        *int     `split_words:"true"`
	Seed           *uint64  `split_words:"true"`
	EnergyGev      *float64 `split_words:"true"`
	Particle       *string  `split_words:"true"`
	Record         *bool    `split_words:"true"`
	RecordPath     *string  `split_words:"true"`
	Monitor        *bool    `split_words:"true"`
	MonitorPort    *int     `split_words:"true"`
	OpenBrowser    *bool    `split_words:"true"`
	LogLevel       *string  `split_words:"true"`
	LogDevelopment *bool    `split_words:"true"`
}

func (s *Settings) loadEnv() error {
	var env environment
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	set(&s.Trace.Verbosity, env.Verbose)
	set(&s.Trace.EkinThresholdGeV, env.EkinGev)
	set(&s.Trace.EventIDs, env.TraceEvents)
	set(&s.Trace.TrackIDs, env.TraceTracks)
	set(&s.Run.Events, env.NumEvents)
	set(&s.Run.Workers, env.Workers)
	set(&s.Run.Seed, env.Seed)
	set(&s.Run.PrimaryEnergyGeV, env.EnergyGev)
	set(&s.Run.Particle, env.Particle)
	set(&s.Recording.Enabled, env.Record)
	set(&s.Recording.Path, env.RecordPath)
	set(&s.Monitor.Enabled, env.Monitor)
	set(&s.Monitor.Port, env.MonitorPort)
	set(&s.Monitor.OpenBrowser, env.OpenBrowser)
	set(&s.Log.Level, env.LogLevel)
	set(&s.Log.Development, env.LogDevelopment)

	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (s *Settings) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// loadDotEnv exports the variables of a .env file that are not already set
// in the environment.
func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultDotEnv
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("failed to load %s: %w", path, err)
}

// TraceConfig converts the trace settings into the tracer configuration.
func (s *Settings) TraceConfig() verbose.Config {
	return verbose.Config{
		Verbosity:     s.Trace.Verbosity,
		EkinThreshold: s.Trace.EkinThresholdGeV * units.GeV,
		EventIDs:      append([]int(nil), s.Trace.EventIDs...),
		TrackIDs:      append([]int(nil), s.Trace.TrackIDs...),
	}
}

// Validate reports the first setting that cannot drive a run.
func (s *Settings) Validate() error {
	switch {
	case s.Run.Events < 0:
		return fmt.Errorf("number of events must not be negative, got %d",
			s.Run.Events)
	case s.Run.Workers < 1:
		return fmt.Errorf("number of workers must be at least 1, got %d",
			s.Run.Workers)
	case s.Run.PrimaryEnergyGeV <= 0:
		return fmt.Errorf("primary energy must be positive, got %g GeV",
			s.Run.PrimaryEnergyGeV)
	case len(s.Run.Layers) == 0:
		return errors.New("at least one layer is required")
	case s.Monitor.Port < 0 || s.Monitor.Port > 65535:
		return fmt.Errorf("invalid monitor port %d", s.Monitor.Port)
	}

	for _, l := range s.Run.Layers {
		if l.ThicknessCm <= 0 || l.InteractionLengthCm <= 0 {
			return fmt.Errorf("layer %q must have a positive thickness "+
				"and interaction length", l.Name)
		}

		if l.IonisationMeVPerCm < 0 {
			return fmt.Errorf("layer %q has a negative ionisation", l.Name)
		}
	}

	return nil
}
