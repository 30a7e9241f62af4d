package shower

import (
	"context"
	"encoding/json"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/steptrace/stepping"
	"github.com/sarchlab/steptrace/units"
)

type notification struct {
	pos  *stepping.HookPos
	item any

	// Snapshot of the item at the time of the notification.
	snapshot string
}

type recordingHook struct {
	notifications []notification
}

func (h *recordingHook) Func(ctx stepping.HookCtx) {
	data, _ := json.Marshal(ctx.Item)

	h.notifications = append(h.notifications, notification{
		pos:      ctx.Pos,
		item:     ctx.Item,
		snapshot: string(data),
	})
}

type countingProgress struct {
	inProgress atomic.Int64
	finished   atomic.Int64
}

func (p *countingProgress) IncrementInProgress(amount uint64) {
	p.inProgress.Add(int64(amount))
}

func (p *countingProgress) MoveInProgressToFinished(amount uint64) {
	p.inProgress.Add(-int64(amount))
	p.finished.Add(int64(amount))
}

func smallConfig() Config {
	c := DefaultConfig()
	c.Events = 6
	c.Workers = 2
	c.PrimaryEnergy = 2 * units.GeV
	c.EnergyCut = 50 * units.MeV

	return c
}

func runWithRecorders(c Config) (*Summary, []*recordingHook) {
	hooks := make([]*recordingHook, c.Workers)
	for i := range hooks {
		hooks[i] = &recordingHook{}
	}

	summary, err := Run(context.Background(), c,
		func(worker int) []stepping.Hook {
			return []stepping.Hook{hooks[worker]}
		})
	Expect(err).NotTo(HaveOccurred())

	return summary, hooks
}

// checkLifecycle verifies the notification grammar of one worker:
// {event, (track start, step+, stack*, track end)*}*.
func checkLifecycle(notifications []notification) {
	inTrack := false
	steps := 0

	var current *stepping.Track

	for i, n := range notifications {
		switch n.pos {
		case stepping.HookPosBeginOfEvent:
			Expect(inTrack).To(BeFalse(), "notification %d", i)
		case stepping.HookPosTrackStarted:
			Expect(inTrack).To(BeFalse(), "notification %d", i)
			inTrack = true
			steps = 0
			current = n.item.(stepping.TrackStart).Track
		case stepping.HookPosNextStep:
			Expect(inTrack).To(BeTrue(), "notification %d", i)
			item := n.item.(stepping.StepTaken)
			Expect(item.Step.Track).To(BeIdenticalTo(current))
			steps++
		case stepping.HookPosStackFilled:
		case stepping.HookPosTrackEnded:
			Expect(inTrack).To(BeTrue(), "notification %d", i)
			Expect(steps).To(BeNumerically(">", 0))
			Expect(n.item.(stepping.TrackEnd).Track).To(BeIdenticalTo(current))
			inTrack = false
		default:
			Fail("unexpected position")
		}
	}

	Expect(inTrack).To(BeFalse())
}

var _ = Describe("Run", func() {
	It("should notify in lifecycle order on every worker", func() {
		_, hooks := runWithRecorders(smallConfig())

		for _, h := range hooks {
			Expect(h.notifications).NotTo(BeEmpty())
			checkLifecycle(h.notifications)
		}
	})

	It("should deal the events round robin", func() {
		_, hooks := runWithRecorders(smallConfig())

		for worker, h := range hooks {
			var events []int

			for _, n := range h.notifications {
				if n.pos == stepping.HookPosBeginOfEvent {
					events = append(events, n.item.(stepping.EventStart).EventID)
				}
			}

			Expect(events).To(Equal([]int{worker, worker + 2, worker + 4}))
		}
	})

	It("should end every track on an ending step", func() {
		_, hooks := runWithRecorders(smallConfig())

		for _, h := range hooks {
			for i, n := range h.notifications {
				if n.pos != stepping.HookPosTrackEnded {
					continue
				}

				j := i - 1
				for h.notifications[j].pos != stepping.HookPosNextStep {
					j--
				}

				var last map[string]any
				Expect(json.Unmarshal(
					[]byte(h.notifications[j].snapshot), &last)).To(Succeed())

				item := h.notifications[j].item.(stepping.StepTaken)
				track := last["step"].(map[string]any)["track"].(map[string]any)
				_, hasNext := track["next_volume"]
				ending := !hasNext || item.IsKilled ||
					track["status"].(float64) == float64(stepping.TrackStatusStopAndKill)
				Expect(ending).To(BeTrue())
			}
		}
	})

	It("should number the steps of a track from one", func() {
		_, hooks := runWithRecorders(smallConfig())

		expected := 0
		for _, n := range hooks[0].notifications {
			switch n.pos {
			case stepping.HookPosTrackStarted:
				expected = 1
			case stepping.HookPosNextStep:
				var item struct {
					Step struct {
						Track struct {
							StepNumber int `json:"step_number"`
						} `json:"track"`
					} `json:"step"`
				}
				Expect(json.Unmarshal([]byte(n.snapshot), &item)).To(Succeed())
				Expect(item.Step.Track.StepNumber).To(Equal(expected))
				expected++
			}
		}
	})

	It("should conserve the energy of every event", func() {
		summary, _ := runWithRecorders(smallConfig())

		Expect(summary.Events).To(Equal(6))
		Expect(summary.Tracks).To(BeNumerically(">=", 6))
		Expect(summary.Steps).To(BeNumerically(">=", summary.Tracks))

		for event := range summary.Deposits {
			Expect(summary.Balance(event)).To(
				BeNumerically("<", 1e-6*summary.PrimaryEnergy))
		}

		Expect(summary.MeanDeposit()).To(BeNumerically(">", 0))
		Expect(summary.MeanDeposit()).To(
			BeNumerically("<=", summary.PrimaryEnergy))
		Expect(summary.StdDevDeposit()).To(BeNumerically(">=", 0))
	})

	It("should be reproducible for a given seed", func() {
		_, first := runWithRecorders(smallConfig())
		_, second := runWithRecorders(smallConfig())

		for w := range first {
			Expect(second[w].notifications).To(
				HaveLen(len(first[w].notifications)))

			for i := range first[w].notifications {
				Expect(second[w].notifications[i].snapshot).To(
					Equal(first[w].notifications[i].snapshot))
			}
		}

		c := smallConfig()
		c.Seed = 99
		_, other := runWithRecorders(c)

		Expect(snapshots(other[0])).NotTo(Equal(snapshots(first[0])))
	})

	It("should transport the primary first", func() {
		c := smallConfig()
		c.Events = 1
		c.Workers = 1
		_, hooks := runWithRecorders(c)

		n := hooks[0].notifications
		Expect(n[0].pos).To(Equal(stepping.HookPosBeginOfEvent))
		Expect(n[1].pos).To(Equal(stepping.HookPosTrackStarted))
		Expect(n[1].item.(stepping.TrackStart).Track.ID).To(Equal(1))
		Expect(n[1].item.(stepping.TrackStart).Track.ParentID).To(BeZero())
	})

	It("should stop a primary under the energy cut on its first step", func() {
		c := smallConfig()
		c.Events = 1
		c.Workers = 1
		c.PrimaryEnergy = 10 * units.MeV
		c.Layers = []Layer{{Name: "Tracker", Thickness: 1 * units.M,
			InteractionLength: 1e9, Ionisation: 0.02}}
		summary, hooks := runWithRecorders(c)

		n := hooks[0].notifications
		Expect(n).To(HaveLen(4))
		Expect(n[2].pos).To(Equal(stepping.HookPosNextStep))

		step := n[2].item.(stepping.StepTaken).Step
		Expect(step.Track.Status).To(Equal(stepping.TrackStatusStopAndKill))
		Expect(step.TotalEnergyDeposit).To(BeNumerically("~", 10*units.MeV, 1e-9))
		Expect(summary.Killed).To(BeZero())
		Expect(summary.Deposits[0]).To(BeNumerically("~", 10*units.MeV, 1e-9))
	})

	It("should kill secondaries under the energy cut when stacking them",
		func() {
			_, hooks := runWithRecorders(smallConfig())

			cut := smallConfig().EnergyCut
			for _, h := range hooks {
				for _, n := range h.notifications {
					if n.pos != stepping.HookPosStackFilled {
						continue
					}

					var item struct {
						Track struct {
							ParentID      int     `json:"parent_id"`
							KineticEnergy float64 `json:"kinetic_energy"`
						} `json:"track"`
						IsKilled bool `json:"is_killed"`
					}
					Expect(json.Unmarshal([]byte(n.snapshot), &item)).
						To(Succeed())
					Expect(item.IsKilled).To(
						Equal(item.Track.KineticEnergy < cut))
					Expect(item.Track.ParentID).NotTo(BeZero())
				}
			}
		})

	It("should kill tracks that take too many steps", func() {
		c := smallConfig()
		c.Events = 1
		c.Workers = 1
		c.Particle = "mu-"
		c.Layers = []Layer{{Name: "Air", Thickness: 10 * units.M,
			InteractionLength: 1000 * units.M}}
		c.MaxStep = 1 * units.Cm
		c.MaxStepsPerTrack = 5

		summary, hooks := runWithRecorders(c)

		killed := 0
		for _, n := range hooks[0].notifications {
			if n.pos == stepping.HookPosNextStep &&
				n.item.(stepping.StepTaken).IsKilled {
				killed++
				Expect(n.item.(stepping.StepTaken).Step.Track.StepNumber).
					To(Equal(5))
			}
		}

		Expect(killed).To(Equal(1))
		Expect(summary.Killed).To(Equal(1))
		Expect(summary.Balance(0)).To(BeNumerically("<", 1e-6))
	})

	It("should let an unstopped particle escape", func() {
		c := smallConfig()
		c.Events = 1
		c.Workers = 1
		c.Particle = "gamma"
		c.Layers = []Layer{{Name: "Vacuum", Thickness: 1 * units.Cm,
			InteractionLength: 1e12 * units.M}}

		summary, hooks := runWithRecorders(c)

		Expect(summary.Escaped[0]).To(Equal(c.PrimaryEnergy))
		Expect(summary.Deposits[0]).To(BeZero())

		steps := stepsOf(hooks[0])
		Expect(steps).To(HaveLen(1))

		step := steps[0]
		Expect(step.PostStepPoint.Status).To(Equal(stepping.StepStatusGeomBoundary))
		Expect(step.PostStepPoint.ProcessDefinedStep.Name).To(Equal("Transportation"))
		Expect(step.PostStepPoint.Volume).To(BeNil())
		Expect(step.Track.NextVolume).To(BeNil())
		Expect(step.PreStepPoint.Volume.Name).To(Equal("Vacuum"))
		Expect(step.PostStepPoint.GlobalTime).To(
			BeNumerically("~", 1*units.Cm/units.CLight, 1e-12))
	})

	It("should report progress", func() {
		p := &countingProgress{}
		r, err := MakeBuilder().
			WithConfig(smallConfig()).
			WithProgress(p).
			Build()
		Expect(err).NotTo(HaveOccurred())

		_, err = r.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(p.finished.Load()).To(Equal(int64(6)))
		Expect(p.inProgress.Load()).To(BeZero())
	})

	It("should stop between events when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		summary, err := Run(ctx, smallConfig(), nil)

		Expect(err).To(MatchError(context.Canceled))
		Expect(summary.Events).To(BeZero())
		Expect(summary.MeanDeposit()).To(BeZero())
	})

	DescribeTable("should reject invalid configurations",
		func(mutate func(c *Config)) {
			c := smallConfig()
			mutate(&c)

			_, err := Run(context.Background(), c, nil)
			Expect(err).To(HaveOccurred())
		},
		Entry("no worker", func(c *Config) { c.Workers = 0 }),
		Entry("negative events", func(c *Config) { c.Events = -1 }),
		Entry("no energy", func(c *Config) { c.PrimaryEnergy = 0 }),
		Entry("no layer", func(c *Config) { c.Layers = nil }),
		Entry("unknown particle", func(c *Config) { c.Particle = "axion" }),
		Entry("deposit fraction", func(c *Config) { c.DepositFraction = 1 }),
	)
})

// stepsOf returns the steps a worker notified, in order.
func stepsOf(h *recordingHook) []*stepping.Step {
	var steps []*stepping.Step

	for _, n := range h.notifications {
		if n.pos == stepping.HookPosNextStep {
			steps = append(steps, n.item.(stepping.StepTaken).Step)
		}
	}

	return steps
}

func snapshots(h *recordingHook) []string {
	s := make([]string, len(h.notifications))
	for i, n := range h.notifications {
		s[i] = n.snapshot
	}

	return s
}
