package config

import (
	"github.com/spf13/pflag"
)

// Flags binds the command line flags that override settings.
type Flags struct {
	fs *pflag.FlagSet

	verbosity int
	ekinGeV   float64
	eventIDs  []int
	trackIDs  []int

	numEvents int
	workers   int
	seed      uint64
	energyGeV float64
	particle  string

	recordPath string

	monitor     bool
	port        int
	openBrowser bool

	logLevel string
}

// RegisterTraceFlags registers the tracer selection flags on fs.
func RegisterTraceFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	f.registerTrace()
	f.fs.StringVar(&f.logLevel, "log-level", "info",
		"Log level of the tool logger (debug, info, warn, error).")

	return f
}

// RegisterRunFlags registers every flag of a generating run on fs.
func RegisterRunFlags(fs *pflag.FlagSet) *Flags {
	f := RegisterTraceFlags(fs)

	fs.IntVar(&f.numEvents, "num-events", 1, "Number of events to generate.")
	fs.IntVar(&f.workers, "workers", 1, "Number of workers.")
	fs.Uint64Var(&f.seed, "seed", 1, "Random seed of worker 0.")
	fs.Float64Var(&f.energyGeV, "energy", 10, "Primary kinetic energy in GeV.")
	fs.StringVar(&f.particle, "particle", "e-", "Primary particle name.")
	fs.StringVar(&f.recordPath, "record", "",
		"Record the notifications into the given SQLite file.")
	fs.BoolVar(&f.monitor, "monitor", false, "Start the HTTP monitor.")
	fs.IntVar(&f.port, "port", 0,
		"Port of the HTTP monitor. 0 picks a free port.")
	fs.BoolVar(&f.openBrowser, "open-browser", false,
		"Open the monitor in a browser.")

	return f
}

func (f *Flags) registerTrace() {
	f.fs.IntVarP(&f.verbosity, "verbose", "v", 1,
		"Verbosity of the stepping tracer. 0 disables it.")
	f.fs.Float64Var(&f.ekinGeV, "ekin", 1,
		"Kinetic energy threshold in GeV.")
	f.fs.IntSliceVar(&f.eventIDs, "events", nil,
		"Events to trace. Empty traces every event.")
	f.fs.IntSliceVar(&f.trackIDs, "tracks", nil,
		"Tracks to trace. Empty selects by energy threshold.")
}

// Apply overrides s with the flags the user set explicitly.
func (f *Flags) Apply(s *Settings) {
	f.apply("verbose", func() { s.Trace.Verbosity = f.verbosity })
	f.apply("ekin", func() { s.Trace.EkinThresholdGeV = f.ekinGeV })
	f.apply("events", func() { s.Trace.EventIDs = append([]int(nil), f.eventIDs...) })
	f.apply("tracks", func() { s.Trace.TrackIDs = append([]int(nil), f.trackIDs...) })
	f.apply("log-level", func() { s.Log.Level = f.logLevel })

	f.apply("num-events", func() { s.Run.Events = f.numEvents })
	f.apply("workers", func() { s.Run.Workers = f.workers })
	f.apply("seed", func() { s.Run.Seed = f.seed })
	f.apply("energy", func() { s.Run.PrimaryEnergyGeV = f.energyGeV })
	f.apply("particle", func() { s.Run.Particle = f.particle })
	f.apply("record", func() {
		s.Recording.Enabled = true
		s.Recording.Path = f.recordPath
	})
	f.apply("monitor", func() { s.Monitor.Enabled = f.monitor })
	f.apply("port", func() { s.Monitor.Port = f.port })
	f.apply("open-browser", func() { s.Monitor.OpenBrowser = f.openBrowser })
}

func (f *Flags) apply(name string, fn func()) {
	if f.fs.Lookup(name) == nil || !f.fs.Changed(name) {
		return
	}

	fn()
}
