package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sarchlab/steptrace/config"
	"github.com/sarchlab/steptrace/recording"
	"github.com/sarchlab/steptrace/stepping"
	"github.com/sarchlab/steptrace/verbose"
)

var (
	replayFlags   *config.Flags
	replayWorkers []int
)

var replayCmd = &cobra.Command{
	Use:   "replay <recording>",
	Short: "Trace a recorded run again with other selection settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := loadSettings(replayFlags)
		if err != nil {
			return err
		}

		return replay(args[0], s)
	},
}

func init() {
	replayFlags = config.RegisterTraceFlags(replayCmd.Flags())
	replayCmd.Flags().IntSliceVar(&replayWorkers, "worker", nil,
		"Workers to replay. Empty replays all the workers in order.")
	rootCmd.AddCommand(replayCmd)
}

func replay(path string, s *config.Settings) error {
	logger, err := newLogger(s)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reader, err := recording.Open(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	workers := replayWorkers
	if len(workers) == 0 {
		workers, err = reader.Workers()
		if err != nil {
			return err
		}
	}

	sink := verbose.NewSink(os.Stdout)

	for _, w := range workers {
		target := stepping.NewHookableBase()
		target.AcceptHook(verbose.MakeBuilder().
			WithConfig(s.TraceConfig()).
			WithSink(sink).
			Build(fmt.Sprintf("Worker[%d].SteppingVerbose", w)))

		n, err := reader.Replay(w, target)
		if err != nil {
			return fmt.Errorf("replaying worker %d: %w", w, err)
		}

		logger.Worker(w).Info("worker replayed", zap.Int("notifications", n))
	}

	return nil
}
