package verbose

import (
	"io"
	"os"
)

// Config is the selection configuration of a SteppingVerbose. It is fixed
// once the tracer is built.
type Config struct {
	// Verbosity selects the amount of output. Zero disables the tracer.
	Verbosity int `json:"verbosity"`

	// EkinThreshold is the kinetic energy, in internal units, a track needs
	// to be selected when TrackIDs is empty. It also filters the
	// secondaries report and the stack-fill lines.
	EkinThreshold float64 `json:"ekin_threshold"`

	// EventIDs lists the events to trace. Empty means all events.
	EventIDs []int `json:"event_ids"`

	// TrackIDs lists the tracks to trace. Empty means all tracks above the
	// energy threshold.
	TrackIDs []int `json:"track_ids"`
}

// Builder builds SteppingVerbose tracers.
type Builder struct {
	verbosity     int
	ekinThreshold float64
	eventIDs      []int
	trackIDs      []int
	sink          *Sink
}

// MakeBuilder returns a new Builder. The default tracer is silent
// (verbosity 0) and writes to standard output.
func MakeBuilder() Builder {
	return Builder{}
}

// WithVerbosity sets the verbosity level.
func (b Builder) WithVerbosity(verbosity int) Builder {
	b.verbosity = verbosity
	return b
}

// WithEkinThreshold sets the kinetic energy threshold, in internal units.
func (b Builder) WithEkinThreshold(threshold float64) Builder {
	b.ekinThreshold = threshold
	return b
}

// WithEventIDs sets the events of interest.
func (b Builder) WithEventIDs(ids ...int) Builder {
	b.eventIDs = append([]int(nil), ids...)
	return b
}

// WithTrackIDs sets the tracks of interest.
func (b Builder) WithTrackIDs(ids ...int) Builder {
	b.trackIDs = append([]int(nil), ids...)
	return b
}

// WithConfig copies all the selection settings from a Config.
func (b Builder) WithConfig(c Config) Builder {
	return b.
		WithVerbosity(c.Verbosity).
		WithEkinThreshold(c.EkinThreshold).
		WithEventIDs(c.EventIDs...).
		WithTrackIDs(c.TrackIDs...)
}

// WithSink sets the sink the tracer writes to. Tracers of different workers
// may share a sink.
func (b Builder) WithSink(s *Sink) Builder {
	b.sink = s
	return b
}

// WithWriter makes the tracer write to its own sink wrapping w.
func (b Builder) WithWriter(w io.Writer) Builder {
	b.sink = NewSink(w)
	return b
}

// Build creates a SteppingVerbose with the given name.
func (b Builder) Build(name string) *SteppingVerbose {
	t := &SteppingVerbose{
		name: name,
		config: Config{
			Verbosity:     b.verbosity,
			EkinThreshold: b.ekinThreshold,
			EventIDs:      append([]int(nil), b.eventIDs...),
			TrackIDs:      append([]int(nil), b.trackIDs...),
		},
		eventSet: toSet(b.eventIDs),
		trackSet: toSet(b.trackIDs),
		sink:     b.sink,
	}

	if t.sink == nil {
		t.sink = NewSink(os.Stdout)
	}

	return t
}

func toSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set
}
