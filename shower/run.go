package shower

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sarchlab/steptrace/stepping"
)

// Progress is told when events start and finish.
type Progress interface {
	IncrementInProgress(amount uint64)
	MoveInProgressToFinished(amount uint64)
}

// HookFactory returns the hooks to attach to a worker.
type HookFactory func(worker int) []stepping.Hook

// Summary is the outcome of a run.
type Summary struct {
	Tally

	PrimaryEnergy float64

	// Per-event energies, indexed by event ID. Events that did not run are
	// zero.
	Deposits []float64
	Escaped  []float64
	Dropped  []float64
}

// MeanDeposit returns the mean energy deposited per finished event.
func (s *Summary) MeanDeposit() float64 {
	if s.Events == 0 {
		return 0
	}

	return floats.Sum(s.Deposits) / float64(s.Events)
}

// StdDevDeposit returns the standard deviation of the deposited energy over
// all the events of the run.
func (s *Summary) StdDevDeposit() float64 {
	if len(s.Deposits) < 2 {
		return 0
	}

	return stat.StdDev(s.Deposits, nil)
}

// Runner runs events on a pool of workers.
type Runner struct {
	config   Config
	geometry *Geometry
	primary  *stepping.ParticleDefinition
	hooks    HookFactory
	progress Progress
	logger   *zap.Logger
}

// Builder builds Runners.
type Builder struct {
	config   Config
	hooks    HookFactory
	progress Progress
	logger   *zap.Logger
}

// MakeBuilder returns a Builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}
}

// WithConfig sets the run configuration.
func (b Builder) WithConfig(c Config) Builder {
	b.config = c
	return b
}

// WithHooks sets the function that provides the hooks of each worker.
func (b Builder) WithHooks(f HookFactory) Builder {
	b.hooks = f
	return b
}

// WithProgress sets the progress tracker of the run.
func (b Builder) WithProgress(p Progress) Builder {
	b.progress = p
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(l *zap.Logger) Builder {
	b.logger = l
	return b
}

// Build creates the runner.
func (b Builder) Build() (*Runner, error) {
	if err := b.config.validate(); err != nil {
		return nil, err
	}

	geometry, err := NewGeometry(b.config.Layers)
	if err != nil {
		return nil, err
	}

	primary, err := FindParticle(b.config.Particle)
	if err != nil {
		return nil, err
	}

	return &Runner{
		config:   b.config,
		geometry: geometry,
		primary:  primary,
		hooks:    b.hooks,
		progress: b.progress,
		logger:   b.logger,
	}, nil
}

// Run transports cfg.Events events and attaches the hooks of hooksPerWorker
// to each worker.
func Run(
	ctx context.Context,
	cfg Config,
	hooksPerWorker HookFactory,
) (*Summary, error) {
	r, err := MakeBuilder().
		WithConfig(cfg).
		WithHooks(hooksPerWorker).
		Build()
	if err != nil {
		return nil, err
	}

	return r.Run(ctx)
}

// Run transports the events. Cancelling ctx stops the workers between
// events; the summary then covers the events that finished.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	workers := make([]*Worker, r.config.Workers)
	for i := range workers {
		workers[i] = NewWorker(i, r.config, r.geometry, r.primary, r.logger)

		if r.hooks != nil {
			for _, h := range r.hooks(i) {
				workers[i].AcceptHook(h)
			}
		}
	}

	summary := &Summary{
		PrimaryEnergy: r.config.PrimaryEnergy,
		Deposits:      make([]float64, r.config.Events),
		Escaped:       make([]float64, r.config.Events),
		Dropped:       make([]float64, r.config.Events),
	}

	r.logger.Info("run started",
		zap.Int("events", r.config.Events),
		zap.Int("workers", r.config.Workers),
		zap.String("particle", r.primary.Name),
		zap.Float64("energy_mev", r.config.PrimaryEnergy))

	var wg sync.WaitGroup

	for _, w := range workers {
		wg.Add(1)

		go func(w *Worker) {
			defer wg.Done()
			r.runWorker(ctx, w, summary)
		}(w)
	}

	wg.Wait()

	for _, w := range workers {
		summary.add(w.Tally())
	}

	r.logger.Info("run finished",
		zap.Int("events", summary.Events),
		zap.Int("tracks", summary.Tracks),
		zap.Int("steps", summary.Steps),
		zap.Float64("mean_deposit_mev", summary.MeanDeposit()))

	return summary, ctx.Err()
}

// runWorker runs the events ID, ID + W, ID + 2W, ... Each event writes a
// distinct slot of the summary slices.
func (r *Runner) runWorker(ctx context.Context, w *Worker, summary *Summary) {
	for id := w.ID(); id < r.config.Events; id += r.config.Workers {
		if ctx.Err() != nil {
			w.logger.Debug("worker cancelled", zap.Int("next_event", id))
			return
		}

		if r.progress != nil {
			r.progress.IncrementInProgress(1)
		}

		deposit, escaped, dropped := w.RunEvent(id)
		summary.Deposits[id] = deposit
		summary.Escaped[id] = escaped
		summary.Dropped[id] = dropped

		if r.progress != nil {
			r.progress.MoveInProgressToFinished(1)
		}
	}
}

// Balance returns, for an event, how far the deposited, escaped and dropped
// energies are from the primary energy. It is zero up to rounding.
func (s *Summary) Balance(event int) float64 {
	return math.Abs(s.PrimaryEnergy -
		s.Deposits[event] - s.Escaped[event] - s.Dropped[event])
}
