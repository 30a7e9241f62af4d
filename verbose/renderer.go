package verbose

import (
	"strings"

	"github.com/sarchlab/steptrace/stepping"
	"github.com/sarchlab/steptrace/units"
)

// NextStep prints the step of a selected track. Verbosity 3 and above adds
// the pre/post step point table before the summary row. Verbosity 2 and
// above lists the secondaries when the step ends the track.
func (t *SteppingVerbose) NextStep(step *stepping.Step, isKilled bool) {
	defer t.swallowPanic()

	if !t.trackSelected || step == nil || step.Track == nil {
		return
	}

	if t.config.Verbosity >= 3 {
		t.printStepPoints(step)
	}

	t.printStepRow(step, isKilled)

	if t.config.Verbosity <= 1 {
		return
	}

	if !TrackIsEnding(step.Track, isKilled) {
		return
	}

	t.reportSecondaries(step.Secondaries, t.config.EkinThreshold)
}

// TrackIsEnding tells if the step that left the track in the given state is
// the last step of the track: the track left the world, was killed by the
// host, or was stopped and killed by a process.
func TrackIsEnding(track *stepping.Track, isKilled bool) bool {
	return track.NextVolume == nil ||
		isKilled ||
		track.Status == stepping.TrackStatusStopAndKill
}

func (t *SteppingVerbose) printStepRow(step *stepping.Step, isKilled bool) {
	track := step.Track
	b := new(strings.Builder)

	b.WriteString(integer(track.StepNumber, 5))
	b.WriteString(" ")
	t.writePositionAndEnergy(b, track.Position, track.KineticEnergy)

	b.WriteString(num(step.TotalEnergyDeposit/units.MeV, 8, depositPrecision))
	b.WriteString(" ")
	b.WriteString(num(step.StepLength/units.Mm, 8, depositPrecision))
	b.WriteString(" ")
	b.WriteString(num(track.TrackLength/units.Cm, 9, depositPrecision))
	b.WriteString(" ")

	if track.NextVolume != nil {
		b.WriteString(t.field(30, func() string {
			return pad(track.Volume.Name, 30)
		}))
	} else {
		b.WriteString(pad(outOfWorld, 30))
	}
	b.WriteString(" ")

	if isKilled {
		b.WriteString(killedMarker)
	} else {
		b.WriteString(t.field(0, func() string {
			if step.PostStepPoint.ProcessDefinedStep == nil {
				return ""
			}
			return step.PostStepPoint.ProcessDefinedStep.Name
		}))
	}

	b.WriteString("\n")
	t.emit(b)
}

// A pointRow is one line of the pre/post step point table.
type pointRow struct {
	label string
	value func(p *stepping.StepPoint) string
}

func numOf(get func(p *stepping.StepPoint) float64) func(*stepping.StepPoint) string {
	return func(p *stepping.StepPoint) string {
		return num(get(p), 30, extendedPrecision)
	}
}

var pointRows = []pointRow{
	{"      Position - x (cm)   : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.Position.X / units.Cm
	})},
	{"      Position - y (cm)   : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.Position.Y / units.Cm
	})},
	{"      Position - z (cm)   : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.Position.Z / units.Cm
	})},
	{"      Global Time (ns)    : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.GlobalTime / units.Ns
	})},
	{"      Local Time (ns)     : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.LocalTime / units.Ns
	})},
	{"      Proper Time (ns)    : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.ProperTime / units.Ns
	})},
	{"      Momentum Direct - x : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.MomentumDirection.X
	})},
	{"      Momentum Direct - y : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.MomentumDirection.Y
	})},
	{"      Momentum Direct - z : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.MomentumDirection.Z
	})},
	{"      Momentum - x (GeV/c): ", numOf(func(p *stepping.StepPoint) float64 {
		return p.Momentum.X / units.GeV
	})},
	{"      Momentum - y (GeV/c): ", numOf(func(p *stepping.StepPoint) float64 {
		return p.Momentum.Y / units.GeV
	})},
	{"      Momentum - z (GeV/c): ", numOf(func(p *stepping.StepPoint) float64 {
		return p.Momentum.Z / units.GeV
	})},
	{"      Total Energy (GeV)  : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.TotalEnergy / units.GeV
	})},
	{"      Kinetic Energy (GeV): ", numOf(func(p *stepping.StepPoint) float64 {
		return p.KineticEnergy / units.GeV
	})},
	{"      Velocity (mm/ns)    : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.Velocity
	})},
	{"      Volume Name         : ", func(p *stepping.StepPoint) string {
		if p.Volume == nil {
			return pad(outOfWorld, 30)
		}
		return pad(p.Volume.Name, 30)
	}},
	{"      Safety (mm)         : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.Safety
	})},
	{"      Polarization - x    : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.Polarization.X
	})},
	{"      Polarization - y    : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.Polarization.Y
	})},
	{"      Polarization - Z    : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.Polarization.Z
	})},
	{"      Weight              : ", numOf(func(p *stepping.StepPoint) float64 {
		return p.Weight
	})},
	{"      Step Status         : ", func(p *stepping.StepPoint) string {
		return pad(p.Status.String(), 30)
	}},
	{"      Process defined Step: ", func(p *stepping.StepPoint) string {
		if p.ProcessDefinedStep == nil {
			return pad(undefined, 30)
		}
		return pad(p.ProcessDefinedStep.Name, 30)
	}},
}

func (t *SteppingVerbose) printStepPoints(step *stepping.Step) {
	b := new(strings.Builder)

	b.WriteString("\n    ++G4Step Information \n")
	b.WriteString("      Step Length (mm)      : ")
	b.WriteString(t.field(0, func() string {
		return num(step.Track.StepLength, 0, extendedPrecision)
	}))
	b.WriteString("\n      Energy Deposit (MeV)  : ")
	b.WriteString(num(step.TotalEnergyDeposit, 0, extendedPrecision))
	b.WriteString("\n")

	b.WriteString(blockRule + "\n")
	b.WriteString("  StepPoint Information  " +
		pad("PreStep", 30) + pad("PostStep", 30) + "\n")
	b.WriteString(blockRule + "\n")

	for _, row := range pointRows {
		b.WriteString(row.label)
		b.WriteString(t.field(30, func() string {
			return row.value(step.PreStepPoint)
		}))
		b.WriteString(t.field(30, func() string {
			return row.value(step.PostStepPoint)
		}))
		b.WriteString("\n")
	}

	b.WriteString(blockRule + "\n")
	t.emit(b)
}
