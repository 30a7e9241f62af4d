package shower

import (
	"math"
	"math/rand/v2"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sarchlab/steptrace/stepping"
	"github.com/sarchlab/steptrace/units"
)

var (
	transportation = &stepping.Process{Name: "Transportation"}
	stepLimiter    = &stepping.Process{Name: "StepLimiter"}
)

// A Worker transports the events it is given, one track at a time. Hooks
// attached to a worker are only ever invoked from the worker's goroutine.
type Worker struct {
	*stepping.HookableBase

	id       int
	config   Config
	geometry *Geometry
	primary  *stepping.ParticleDefinition
	logger   *zap.Logger

	src *rand.PCG
	rng *rand.Rand

	stack       []*stepping.Track
	nextTrackID int

	// State of the track in transport.
	layer      int
	lastStatus stepping.StepStatus
	lastProc   *stepping.Process

	tally Tally
	event eventTally
}

type eventTally struct {
	deposit float64
	escaped float64
	dropped float64
}

// Tally counts what a worker has transported.
type Tally struct {
	Events int
	Tracks int
	Steps  int

	// Killed counts the tracks the host killed, at stacking or for taking
	// too many steps.
	Killed int
}

func (t *Tally) add(o Tally) {
	t.Events += o.Events
	t.Tracks += o.Tracks
	t.Steps += o.Steps
	t.Killed += o.Killed
}

// NewWorker creates a worker with its own random stream, seeded with
// seed + id.
func NewWorker(
	id int,
	config Config,
	geometry *Geometry,
	primary *stepping.ParticleDefinition,
	logger *zap.Logger,
) *Worker {
	seed := config.Seed + uint64(id)
	src := rand.NewPCG(seed, seed)

	return &Worker{
		HookableBase: stepping.NewHookableBase(),
		id:           id,
		config:       config,
		geometry:     geometry,
		primary:      primary,
		logger:       logger.With(zap.Int("worker", id)),
		src:          src,
		rng:          rand.New(src),
	}
}

// ID returns the worker ID.
func (w *Worker) ID() int {
	return w.id
}

// Tally returns what the worker has transported so far.
func (w *Worker) Tally() Tally {
	return w.tally
}

// RunEvent transports one event to completion.
func (w *Worker) RunEvent(eventID int) (deposit, escaped, dropped float64) {
	w.event = eventTally{}
	w.nextTrackID = 1
	w.stack = w.stack[:0]

	stepping.NotifyBeginOfEvent(w, eventID)

	w.stack = append(w.stack, w.newPrimary())

	for len(w.stack) > 0 {
		track := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]

		w.transport(track)
	}

	w.tally.Events++

	w.logger.Debug("event finished",
		zap.Int("event", eventID),
		zap.Float64("deposit_mev", w.event.deposit),
		zap.Int("tracks", w.nextTrackID-1))

	return w.event.deposit, w.event.escaped, w.event.dropped
}

func (w *Worker) newPrimary() *stepping.Track {
	track := w.newTrack(w.primary, 0, w.config.PrimaryEnergy,
		stepping.Vec3{Z: 1})
	track.Volume = w.geometry.Volume(0)
	track.NextVolume = track.Volume

	return track
}

func (w *Worker) newTrack(
	def *stepping.ParticleDefinition,
	parentID int,
	ekin float64,
	dir stepping.Vec3,
) *stepping.Track {
	track := &stepping.Track{
		ID:         w.nextTrackID,
		ParentID:   parentID,
		Definition: def,
		Weight:     1,
	}
	w.nextTrackID++

	setEnergy(track, ekin, dir)

	return track
}

func setEnergy(track *stepping.Track, ekin float64, dir stepping.Vec3) {
	mass := track.Definition.Mass
	total := ekin + mass
	p := math.Sqrt(math.Max(0, total*total-mass*mass))

	track.KineticEnergy = ekin
	track.TotalEnergy = total
	track.Momentum = dir.Unit().Scale(p)
}

// stackTrack pushes a secondary onto the pending stack. Secondaries under
// the energy cut are killed instead.
func (w *Worker) stackTrack(track *stepping.Track) {
	isKilled := track.KineticEnergy < w.config.EnergyCut

	stepping.NotifyStackFilled(w, track, isKilled)

	if isKilled {
		w.event.dropped += track.KineticEnergy
		w.tally.Killed++

		return
	}

	w.stack = append(w.stack, track)
}

func (w *Worker) transport(track *stepping.Track) {
	w.layer = w.geometry.Index(track.Volume)
	if w.layer < 0 {
		w.layer = w.geometry.Locate(track.Position.Z)
	}

	if w.layer < 0 {
		w.dropOutOfWorld(track)
		return
	}

	w.lastStatus = stepping.StepStatusUndefined
	w.lastProc = nil
	w.tally.Tracks++

	stepping.NotifyTrackStarted(w, track, false)

	var produced []*stepping.Track

	for {
		step := w.step(track)
		produced = append(produced, step.Secondaries...)

		isKilled := track.StepNumber >= w.config.MaxStepsPerTrack &&
			track.NextVolume != nil &&
			track.Status != stepping.TrackStatusStopAndKill
		if isKilled {
			w.event.dropped += track.KineticEnergy
			w.tally.Killed++
		}

		stepping.NotifyNextStep(w, step, isKilled)

		if isKilled || track.NextVolume == nil ||
			track.Status == stepping.TrackStatusStopAndKill {
			break
		}

		track.Volume = track.NextVolume
	}

	for _, s := range produced {
		w.stackTrack(s)
	}

	stepping.NotifyTrackEnded(w, track)
}

// dropOutOfWorld ends a track that starts outside the geometry without
// stepping it.
func (w *Worker) dropOutOfWorld(track *stepping.Track) {
	w.tally.Killed++
	w.event.dropped += track.KineticEnergy

	stepping.NotifyTrackStarted(w, track, true)
	stepping.NotifyTrackEnded(w, track)
}

func (w *Worker) step(track *stepping.Track) *stepping.Step {
	layer := w.geometry.layers[w.layer]
	dir := track.Momentum.Unit()

	pre := w.point(track, w.layer)
	pre.Status = w.lastStatus
	pre.ProcessDefinedStep = w.lastProc

	length := w.config.MaxStep
	status := stepping.StepStatusAlongStepProc
	proc := stepLimiter

	freePath := distuv.Exponential{
		Rate: 1 / layer.InteractionLength,
		Src:  w.src,
	}.Rand()
	if freePath < length {
		length = freePath
		status = stepping.StepStatusPostStepProc
		proc = &stepping.Process{Name: processName(track.Definition)}
	}

	toBoundary, nextLayer := w.geometry.DistanceToBoundary(
		w.layer, track.Position.Z, dir.Z)
	if toBoundary <= length {
		length = toBoundary
		status = stepping.StepStatusGeomBoundary
		proc = transportation
		w.layer = nextLayer
	}

	dt := length / pre.Velocity

	track.StepNumber++
	track.StepLength = length
	track.TrackLength += length
	track.Position = track.Position.Add(dir.Scale(length))
	track.GlobalTime += dt
	track.LocalTime += dt
	if track.TotalEnergy > 0 {
		track.ProperTime += dt * track.Definition.Mass / track.TotalEnergy
	}

	deposit := 0.0
	if track.Definition.Charge != 0 {
		deposit = math.Min(track.KineticEnergy, layer.Ionisation*length)
	}

	ekin := track.KineticEnergy - deposit

	var secondaries []*stepping.Track

	switch {
	case status == stepping.StepStatusPostStepProc:
		local := ekin * w.config.DepositFraction
		deposit += local
		secondaries = w.interact(track, ekin-local, dir)
		ekin = 0
		track.Status = stepping.TrackStatusStopAndKill
	case ekin < w.config.EnergyCut:
		deposit += ekin
		ekin = 0
		track.Status = stepping.TrackStatusStopAndKill
	}

	setEnergy(track, ekin, dir)

	if status == stepping.StepStatusGeomBoundary {
		track.NextVolume = w.geometry.Volume(nextLayer)
		if track.NextVolume == nil && track.Status != stepping.TrackStatusStopAndKill {
			w.event.escaped += ekin
		}
	} else {
		track.NextVolume = track.Volume
	}

	w.event.deposit += deposit
	w.tally.Steps++

	post := w.point(track, w.layer)
	post.Volume = track.NextVolume
	post.Status = status
	post.ProcessDefinedStep = proc

	w.lastStatus = status
	w.lastProc = proc

	return &stepping.Step{
		Track:              track,
		PreStepPoint:       pre,
		PostStepPoint:      post,
		StepLength:         length,
		TotalEnergyDeposit: deposit,
		Secondaries:        secondaries,
	}
}

// interact shares ekin between two or three secondaries created at the
// position of the track.
func (w *Worker) interact(
	track *stepping.Track,
	ekin float64,
	dir stepping.Vec3,
) []*stepping.Track {
	species := products[track.Definition.Name]
	n := 2 + w.rng.IntN(2)

	share := distuv.Uniform{Min: 0.1, Max: 1, Src: w.src}
	fractions := make([]float64, n)
	sum := 0.0

	for i := range fractions {
		fractions[i] = share.Rand()
		sum += fractions[i]
	}

	secondaries := make([]*stepping.Track, 0, n)

	for i := range n {
		def := particleTable[species[w.rng.IntN(len(species))]]
		s := w.newTrack(def, track.ID, ekin*fractions[i]/sum,
			w.scatter(dir))

		s.Position = track.Position
		s.GlobalTime = track.GlobalTime
		s.Volume = track.Volume
		s.NextVolume = track.Volume

		secondaries = append(secondaries, s)
	}

	return secondaries
}

// scatter returns a direction around dir, mostly forward.
func (w *Worker) scatter(dir stepping.Vec3) stepping.Vec3 {
	cosTheta := distuv.Uniform{Min: -0.2, Max: 1, Src: w.src}.Rand()
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	phi := 2 * math.Pi * w.rng.Float64()

	// Orthonormal basis around dir.
	u := stepping.Vec3{X: 1}
	if math.Abs(dir.X) > 0.9 {
		u = stepping.Vec3{Y: 1}
	}

	u = cross(dir, u).Unit()
	v := cross(dir, u)

	return dir.Scale(cosTheta).
		Add(u.Scale(sinTheta * math.Cos(phi))).
		Add(v.Scale(sinTheta * math.Sin(phi))).
		Unit()
}

func cross(a, b stepping.Vec3) stepping.Vec3 {
	return stepping.Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func (w *Worker) point(track *stepping.Track, layer int) *stepping.StepPoint {
	p := &stepping.StepPoint{
		Position:          track.Position,
		GlobalTime:        track.GlobalTime,
		LocalTime:         track.LocalTime,
		ProperTime:        track.ProperTime,
		MomentumDirection: track.Momentum.Unit(),
		Momentum:          track.Momentum,
		TotalEnergy:       track.TotalEnergy,
		KineticEnergy:     track.KineticEnergy,
		Velocity:          velocity(track),
		Volume:            w.geometry.Volume(layer),
		Safety:            w.geometry.Safety(layer, track.Position.Z),
		Weight:            track.Weight,
	}

	return p
}

func velocity(track *stepping.Track) float64 {
	if track.Definition.Mass == 0 || track.TotalEnergy == 0 {
		return units.CLight
	}

	return units.CLight * track.Momentum.Mag() / track.TotalEnergy
}
