package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sarchlab/steptrace/config"
	"github.com/sarchlab/steptrace/monitoring"
	"github.com/sarchlab/steptrace/recording"
	"github.com/sarchlab/steptrace/shower"
	"github.com/sarchlab/steptrace/stepping"
	"github.com/sarchlab/steptrace/units"
	"github.com/sarchlab/steptrace/verbose"
)

var generateFlags *config.Flags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the shower simulation and trace the selected steps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := loadSettings(generateFlags)
		if err != nil {
			return err
		}

		if err := s.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return generate(ctx, s)
	},
}

func init() {
	generateFlags = config.RegisterRunFlags(generateCmd.Flags())
	rootCmd.AddCommand(generateCmd)
}

func generate(ctx context.Context, s *config.Settings) error {
	logger, err := newLogger(s)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sink := verbose.NewSink(os.Stdout)
	traceConfig := s.TraceConfig()

	var recorder *recording.Recorder
	if s.Recording.Enabled {
		recorder, err = recording.NewRecorder(s.Recording.Path)
		if err != nil {
			return err
		}
		defer recorder.Close()
	}

	var (
		monitor  *monitoring.Monitor
		progress shower.Progress
	)

	if s.Monitor.Enabled {
		monitor = monitoring.NewMonitor().WithPortNumber(s.Monitor.Port)

		url, err := monitor.StartServer()
		if err != nil {
			return err
		}

		logger.Info("monitor started", zap.String("url", url))

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(), 5*time.Second)
			defer cancel()

			if err := monitor.Shutdown(shutdownCtx); err != nil {
				logger.Warn("cannot stop monitor", zap.Error(err))
			}
		}()

		if s.Monitor.OpenBrowser {
			if err := monitor.OpenBrowser(); err != nil {
				logger.Warn("cannot open browser", zap.Error(err))
			}
		}

		bar := monitor.CreateProgressBar("Events", uint64(s.Run.Events))
		defer monitor.CompleteProgressBar(bar)

		progress = bar
	}

	hooks := func(worker int) []stepping.Hook {
		tracer := verbose.MakeBuilder().
			WithConfig(traceConfig).
			WithSink(sink).
			Build(fmt.Sprintf("Worker[%d].SteppingVerbose", worker))

		list := []stepping.Hook{tracer}

		if recorder != nil {
			list = append(list, recorder.ForWorker(worker))
		}

		if monitor != nil {
			monitor.RegisterTracer(tracer.Name(), tracer)
			list = append(list, monitor.Counter())
		}

		return list
	}

	b := shower.MakeBuilder().
		WithConfig(showerConfig(s)).
		WithHooks(hooks).
		WithLogger(logger.Logger)
	if progress != nil {
		b = b.WithProgress(progress)
	}

	runner, err := b.Build()
	if err != nil {
		return err
	}

	start := time.Now()
	summary, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("run stopped after %d events: %w", summary.Events, err)
	}

	logger.Info("summary",
		zap.Int("events", summary.Events),
		zap.Int("tracks", summary.Tracks),
		zap.Int("steps", summary.Steps),
		zap.Int("killed", summary.Killed),
		zap.Float64("mean_deposit_gev", summary.MeanDeposit()/units.GeV),
		zap.Float64("stddev_deposit_gev", summary.StdDevDeposit()/units.GeV),
		zap.Duration("elapsed", time.Since(start)))

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			return fmt.Errorf("recording failed: %w", err)
		}

		logger.Info("run recorded", zap.String("file", recorder.Filename()))
	}

	return nil
}

func showerConfig(s *config.Settings) shower.Config {
	c := shower.DefaultConfig()
	c.Events = s.Run.Events
	c.Workers = s.Run.Workers
	c.Seed = s.Run.Seed
	c.Particle = s.Run.Particle
	c.PrimaryEnergy = s.Run.PrimaryEnergyGeV * units.GeV

	c.Layers = make([]shower.Layer, 0, len(s.Run.Layers))
	for _, l := range s.Run.Layers {
		c.Layers = append(c.Layers, shower.Layer{
			Name:              l.Name,
			Thickness:         l.ThicknessCm * units.Cm,
			InteractionLength: l.InteractionLengthCm * units.Cm,
			Ionisation:        l.IonisationMeVPerCm * units.MeV / units.Cm,
		})
	}

	return c
}
