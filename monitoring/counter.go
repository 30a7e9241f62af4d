package monitoring

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sarchlab/steptrace/stepping"
)

// A Counter is a hook that counts the stepping notifications it sees. It
// can be attached to any number of workers.
type Counter struct {
	notifications *prometheus.CounterVec
	killed        *prometheus.CounterVec
	deposit       prometheus.Counter

	lock     sync.Mutex
	snapshot CounterSnapshot
}

// CounterSnapshot holds the current values of a Counter.
type CounterSnapshot struct {
	Notifications map[string]uint64 `json:"notifications"`
	Killed        map[string]uint64 `json:"killed"`
	DepositMeV    float64           `json:"deposit_mev"`
}

type identified interface {
	ID() int
}

// NewCounter creates a Counter that registers its metrics on reg.
func NewCounter(reg prometheus.Registerer) *Counter {
	factory := promauto.With(reg)

	return &Counter{
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steptrace_notifications_total",
				Help: "Number of stepping notifications",
			},
			[]string{"position", "worker"},
		),
		killed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steptrace_killed_total",
				Help: "Number of notifications that report a killed track",
			},
			[]string{"position"},
		),
		deposit: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "steptrace_energy_deposit_mev_total",
				Help: "Energy deposited in all the steps, in MeV",
			},
		),
		snapshot: CounterSnapshot{
			Notifications: make(map[string]uint64),
			Killed:        make(map[string]uint64),
		},
	}
}

// Func counts a notification.
func (c *Counter) Func(ctx stepping.HookCtx) {
	if ctx.Pos == nil || stepping.HookPosByName(ctx.Pos.Name) != ctx.Pos {
		return
	}

	worker := ""
	if d, ok := ctx.Domain.(identified); ok {
		worker = strconv.Itoa(d.ID())
	}

	isKilled, deposit := inspect(ctx.Item)

	c.notifications.WithLabelValues(ctx.Pos.Name, worker).Inc()
	if isKilled {
		c.killed.WithLabelValues(ctx.Pos.Name).Inc()
	}

	if deposit > 0 {
		c.deposit.Add(deposit)
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	c.snapshot.Notifications[ctx.Pos.Name]++
	if isKilled {
		c.snapshot.Killed[ctx.Pos.Name]++
	}

	c.snapshot.DepositMeV += deposit
}

func inspect(item any) (isKilled bool, deposit float64) {
	switch item := item.(type) {
	case stepping.TrackStart:
		return item.IsKilled, 0
	case stepping.StepTaken:
		if item.Step != nil {
			deposit = item.Step.TotalEnergyDeposit
		}

		return item.IsKilled, deposit
	case stepping.TrackStacked:
		return item.IsKilled, 0
	}

	return false, 0
}

// Snapshot returns a copy of the current values.
func (c *Counter) Snapshot() CounterSnapshot {
	c.lock.Lock()
	defer c.lock.Unlock()

	s := CounterSnapshot{
		Notifications: make(map[string]uint64, len(c.snapshot.Notifications)),
		Killed:        make(map[string]uint64, len(c.snapshot.Killed)),
		DepositMeV:    c.snapshot.DepositMeV,
	}

	for k, v := range c.snapshot.Notifications {
		s.Notifications[k] = v
	}

	for k, v := range c.snapshot.Killed {
		s.Killed[k] = v
	}

	return s
}
