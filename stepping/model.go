package stepping

import "math"

// Vec3 is a three-vector in the internal unit system.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Scale returns v * f.
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

// Mag returns the length of the vector.
func (v Vec3) Mag() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Unit returns the vector normalized to length one. The zero vector stays
// zero.
func (v Vec3) Unit() Vec3 {
	m := v.Mag()
	if m == 0 {
		return Vec3{}
	}

	return v.Scale(1 / m)
}

// Volume is a placed geometry volume. A nil *Volume means the point is
// outside the world.
type Volume struct {
	Name string `json:"name"`
}

// Process is the physics process that limited a step. A nil *Process means
// no process defined the step.
type Process struct {
	Name string `json:"name"`
}

// ParticleDefinition identifies the species of a track. A nil
// *ParticleDefinition means the species is unresolved.
type ParticleDefinition struct {
	Name    string  `json:"name"`
	PDGCode int     `json:"pdg_code"`
	Mass    float64 `json:"mass"`
	Charge  float64 `json:"charge"`
}

// Track is the state of a simulated particle as seen by the host at the
// time of a notification. During a step notification it holds the
// post-step state.
type Track struct {
	ID            int                 `json:"id"`
	ParentID      int                 `json:"parent_id"`
	Definition    *ParticleDefinition `json:"definition,omitempty"`
	Position      Vec3                `json:"position"`
	Momentum      Vec3                `json:"momentum"`
	KineticEnergy float64             `json:"kinetic_energy"`
	TotalEnergy   float64             `json:"total_energy"`
	GlobalTime    float64             `json:"global_time"`
	LocalTime     float64             `json:"local_time"`
	ProperTime    float64             `json:"proper_time"`
	Volume        *Volume             `json:"volume,omitempty"`
	NextVolume    *Volume             `json:"next_volume,omitempty"`
	StepNumber    int                 `json:"step_number"`
	StepLength    float64             `json:"step_length"`
	TrackLength   float64             `json:"track_length"`
	Status        TrackStatus         `json:"status"`
	Weight        float64             `json:"weight"`
}

// ParticleName returns the species name, or an empty string when the
// definition is unresolved.
func (t *Track) ParticleName() string {
	if t.Definition == nil {
		return ""
	}

	return t.Definition.Name
}

// StepPoint is one end of a step.
type StepPoint struct {
	Position           Vec3       `json:"position"`
	GlobalTime         float64    `json:"global_time"`
	LocalTime          float64    `json:"local_time"`
	ProperTime         float64    `json:"proper_time"`
	MomentumDirection  Vec3       `json:"momentum_direction"`
	Momentum           Vec3       `json:"momentum"`
	TotalEnergy        float64    `json:"total_energy"`
	KineticEnergy      float64    `json:"kinetic_energy"`
	Velocity           float64    `json:"velocity"`
	Volume             *Volume    `json:"volume,omitempty"`
	Safety             float64    `json:"safety"`
	Polarization       Vec3       `json:"polarization"`
	Weight             float64    `json:"weight"`
	Status             StepStatus `json:"status"`
	ProcessDefinedStep *Process   `json:"process_defined_step,omitempty"`
}

// Step is a read-only snapshot of one transport step, handed to observers
// after the step has been taken.
type Step struct {
	Track              *Track     `json:"track"`
	PreStepPoint       *StepPoint `json:"pre_step_point"`
	PostStepPoint      *StepPoint `json:"post_step_point"`
	StepLength         float64    `json:"step_length"`
	TotalEnergyDeposit float64    `json:"total_energy_deposit"`

	// Secondaries lists the tracks produced at this step.
	Secondaries []*Track `json:"secondaries,omitempty"`
}
