package verbose

import (
	"strings"
	"sync/atomic"

	"github.com/sarchlab/steptrace/stepping"
	"github.com/sarchlab/steptrace/units"
)

// SteppingVerbose is a selective stepping tracer. Each worker owns one
// SteppingVerbose; its selection state is not safe for concurrent
// notification.
type SteppingVerbose struct {
	name   string
	config Config

	eventSet map[int]struct{}
	trackSet map[int]struct{}

	sink   *Sink
	faults atomic.Uint64

	eventSelected bool
	trackSelected bool
}

// Name returns the name of the tracer.
func (t *SteppingVerbose) Name() string {
	return t.name
}

// Config returns a copy of the selection configuration.
func (t *SteppingVerbose) Config() Config {
	c := t.config
	c.EventIDs = append([]int(nil), t.config.EventIDs...)
	c.TrackIDs = append([]int(nil), t.config.TrackIDs...)

	return c
}

// Selection reports whether the current event and the current track are
// selected.
func (t *SteppingVerbose) Selection() (event, track bool) {
	return t.eventSelected, t.trackSelected
}

// Faults returns the number of fields that could not be rendered.
func (t *SteppingVerbose) Faults() uint64 {
	return t.faults.Load()
}

// BeginOfEvent decides whether the event is traced and, if so, prints the
// event header.
func (t *SteppingVerbose) BeginOfEvent(eventID int) {
	defer t.swallowPanic()

	t.eventSelected = t.selectEvent(eventID)
	t.trackSelected = false
	if !t.eventSelected {
		return
	}

	b := new(strings.Builder)
	b.WriteString("========== Event #")
	b.WriteString(integer(eventID, 0))
	b.WriteString(" =============\n\n")
	t.emit(b)
}

func (t *SteppingVerbose) selectEvent(eventID int) bool {
	if t.config.Verbosity <= 0 {
		return false
	}

	if len(t.eventSet) == 0 {
		return true
	}

	_, ok := t.eventSet[eventID]

	return ok
}

// TrackStarted decides whether the track is traced and, if so, prints the
// track header, the step table header and the creation row.
func (t *SteppingVerbose) TrackStarted(
	track *stepping.Track,
	isKilled bool,
) bool {
	defer t.swallowPanic()

	t.trackSelected = false
	if !t.eventSelected || track == nil {
		return false
	}

	t.trackSelected = t.selectTrack(track.ID, track.KineticEnergy)
	if !t.trackSelected {
		return false
	}

	t.printTrackHeader(track, isKilled)

	return true
}

// selectTrack applies the membership rule when track IDs are configured and
// the energy threshold otherwise. Membership does not look at the energy.
func (t *SteppingVerbose) selectTrack(trackID int, ekin float64) bool {
	if len(t.trackSet) == 0 {
		return ekin >= t.config.EkinThreshold
	}

	_, ok := t.trackSet[trackID]

	return ok
}

func (t *SteppingVerbose) printTrackHeader(
	track *stepping.Track,
	isKilled bool,
) {
	b := new(strings.Builder)

	b.WriteString(trackBanner)
	b.WriteString("\n* G4Track Information:   Particle = ")
	b.WriteString(t.field(0, track.ParticleName))
	b.WriteString(",   Track ID = ")
	b.WriteString(integer(track.ID, 0))
	b.WriteString(",   Parent ID = ")
	b.WriteString(integer(track.ParentID, 0))
	b.WriteString("\n")
	b.WriteString(trackBanner)
	b.WriteString("\n")

	b.WriteString(pad("Step#", 5) + " " +
		pad("X(cm)", 8) + " " +
		pad("Y(cm)", 8) + " " +
		pad("Z(cm)", 8) + " " +
		pad("KinE(GeV)", 9) + " " +
		pad("dE(MeV)", 8) + " " +
		pad("Step(mm)", 8) + " " +
		pad("TrackL(cm)", 9) + " " +
		pad("PhysVolume", 30) + " " +
		pad("ProcName", 8) + "\n")

	b.WriteString(integer(track.StepNumber, 5))
	b.WriteString(" ")
	t.writePositionAndEnergy(b, track.Position, track.KineticEnergy)

	// dE, step and track length are unknown before the first step.
	b.WriteString(strings.Repeat(" ", 9+9+10))

	if track.Volume != nil {
		b.WriteString(t.field(30, func() string {
			return pad(track.Volume.Name, 30)
		}))
		b.WriteString(" ")
	}

	if isKilled {
		b.WriteString(killedMarker)
	}

	b.WriteString("\n")
	t.emit(b)
}

// writePositionAndEnergy writes the x, y, z (cm) and kinetic energy (GeV)
// columns shared by the creation row, the step rows and the stack lines.
func (t *SteppingVerbose) writePositionAndEnergy(
	b *strings.Builder,
	pos stepping.Vec3,
	ekin float64,
) {
	b.WriteString(num(pos.X/units.Cm, 8, tablePrecision) + " ")
	b.WriteString(num(pos.Y/units.Cm, 8, tablePrecision) + " ")
	b.WriteString(num(pos.Z/units.Cm, 8, tablePrecision) + " ")
	b.WriteString(num(ekin/units.GeV, 9, tablePrecision) + " ")
}

// StackFilled prints a one-line summary of a track queued for later
// transport. It only prints at verbosity 3 and above, inside a selected
// track, for queued tracks above the energy threshold.
func (t *SteppingVerbose) StackFilled(track *stepping.Track, isKilled bool) {
	defer t.swallowPanic()

	if t.config.Verbosity <= 2 || !t.trackSelected || track == nil ||
		track.KineticEnergy < t.config.EkinThreshold {
		return
	}

	b := new(strings.Builder)
	b.WriteString(integer(track.ID, 10))
	b.WriteString(" ")
	t.writePositionAndEnergy(b, track.Position, track.KineticEnergy)

	if track.Volume != nil {
		b.WriteString(t.field(24, func() string {
			return pad(track.Volume.Name, 24)
		}))
		b.WriteString(" ")
	}

	if isKilled {
		b.WriteString(killedMarker)
	}

	b.WriteString("\n")
	t.emit(b)
}

// TrackEnded does not print anything. The end of a track is reported by the
// step that ends it.
func (t *SteppingVerbose) TrackEnded(_ *stepping.Track) {
}

// field renders one output field. A fault inside render blanks the field
// instead of aborting the line.
func (t *SteppingVerbose) field(width int, render func() string) (s string) {
	defer func() {
		if r := recover(); r != nil {
			t.faults.Add(1)
			s = strings.Repeat(" ", width)
		}
	}()

	return render()
}

// swallowPanic keeps faults of a notification from reaching the host.
func (t *SteppingVerbose) swallowPanic() {
	if r := recover(); r != nil {
		t.faults.Add(1)
	}
}

func (t *SteppingVerbose) emit(b *strings.Builder) {
	if _, err := t.sink.WriteString(b.String()); err != nil {
		t.faults.Add(1)
	}
}

var _ stepping.Observer = (*SteppingVerbose)(nil)
