package shower

import (
	"fmt"

	"github.com/sarchlab/steptrace/units"
)

// Config describes a run of the demonstration host.
type Config struct {
	Layers []Layer

	// Events is the number of events of the run. Events are numbered from
	// 0 and dealt round robin to the workers.
	Events  int
	Workers int

	// Seed seeds the random stream of worker 0. Worker n uses Seed + n.
	Seed uint64

	Particle      string
	PrimaryEnergy float64

	// MaxStep limits the length of a single step.
	MaxStep float64

	// EnergyCut is the kinetic energy under which tracks are stopped and
	// killed. Secondaries under the cut are killed when stacked.
	EnergyCut float64

	// DepositFraction is the share of the energy of an interacting track
	// that is deposited locally.
	DepositFraction float64

	// MaxStepsPerTrack makes the host kill a track that loops.
	MaxStepsPerTrack int
}

// DefaultConfig returns a 10 GeV electron entering a tracker and two
// calorimeters.
func DefaultConfig() Config {
	return Config{
		Layers: []Layer{
			{Name: "Tracker", Thickness: 100 * units.Cm,
				InteractionLength: 300 * units.Cm, Ionisation: 0.02},
			{Name: "ECAL", Thickness: 25 * units.Cm,
				InteractionLength: 1.8 * units.Cm, Ionisation: 1.2},
			{Name: "HCAL", Thickness: 120 * units.Cm,
				InteractionLength: 17 * units.Cm, Ionisation: 1.1},
		},
		Events:           1,
		Workers:          1,
		Seed:             1,
		Particle:         "e-",
		PrimaryEnergy:    10 * units.GeV,
		MaxStep:          10 * units.Cm,
		EnergyCut:        10 * units.MeV,
		DepositFraction:  0.1,
		MaxStepsPerTrack: 10000,
	}
}

func (c Config) validate() error {
	switch {
	case c.Events < 0:
		return fmt.Errorf("number of events must not be negative, got %d",
			c.Events)
	case c.Workers < 1:
		return fmt.Errorf("number of workers must be at least 1, got %d",
			c.Workers)
	case c.PrimaryEnergy <= 0:
		return fmt.Errorf("primary energy must be positive")
	case c.MaxStep <= 0:
		return fmt.Errorf("maximum step must be positive")
	case c.EnergyCut <= 0:
		return fmt.Errorf("energy cut must be positive")
	case c.DepositFraction < 0 || c.DepositFraction >= 1:
		return fmt.Errorf("deposit fraction must be in [0, 1)")
	case c.MaxStepsPerTrack < 1:
		return fmt.Errorf("maximum steps per track must be at least 1")
	}

	return nil
}
