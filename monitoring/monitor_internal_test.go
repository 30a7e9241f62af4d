package monitoring

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/steptrace/stepping"
	"github.com/sarchlab/steptrace/units"
	"github.com/sarchlab/steptrace/verbose"
)

type sampleWorker struct {
	*stepping.HookableBase
	id int
}

func (w *sampleWorker) ID() int {
	return w.id
}

func get(server *httptest.Server, path string) (int, string) {
	rsp, err := http.Get(server.URL + path)
	Expect(err).NotTo(HaveOccurred())
	defer rsp.Body.Close()

	body, err := io.ReadAll(rsp.Body)
	Expect(err).NotTo(HaveOccurred())

	return rsp.StatusCode, string(body)
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		server *httptest.Server
	)

	BeforeEach(func() {
		m = NewMonitor()
		server = httptest.NewServer(m.router())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should not use privileged ports", func() {
		Expect(m.WithPortNumber(80).portNumber).To(BeZero())
		Expect(m.WithPortNumber(0).portNumber).To(BeZero())
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should list the progress bars", func() {
		bar := m.CreateProgressBar("Events", 10)
		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)

		done := m.CreateProgressBar("Done", 1)
		m.CompleteProgressBar(done)

		code, body := get(server, "/api/progress")
		Expect(code).To(Equal(http.StatusOK))

		var bars []map[string]any
		Expect(json.Unmarshal([]byte(body), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["name"]).To(Equal("Events"))
		Expect(bars[0]["id"]).To(Equal(bar.ID))
		Expect(bars[0]["total"]).To(Equal(10.0))
		Expect(bars[0]["finished"]).To(Equal(2.0))
		Expect(bars[0]["in_progress"]).To(Equal(1.0))
	})

	It("should count notifications", func() {
		worker := &sampleWorker{HookableBase: stepping.NewHookableBase(), id: 3}
		worker.AcceptHook(m.Counter())

		track := &stepping.Track{ID: 1}
		stepping.NotifyBeginOfEvent(worker, 1)
		stepping.NotifyTrackStarted(worker, track, false)
		stepping.NotifyNextStep(worker,
			&stepping.Step{Track: track, TotalEnergyDeposit: 2 * units.MeV}, false)
		stepping.NotifyNextStep(worker,
			&stepping.Step{Track: track, TotalEnergyDeposit: 0.5 * units.MeV}, true)
		stepping.NotifyStackFilled(worker, &stepping.Track{ID: 2}, true)
		stepping.NotifyTrackEnded(worker, track)
		m.Counter().Func(stepping.HookCtx{Pos: &stepping.HookPos{Name: "Other"}})

		snapshot := m.Counter().Snapshot()
		Expect(snapshot.Notifications).To(Equal(map[string]uint64{
			"BeginOfEvent": 1,
			"TrackStarted": 1,
			"NextStep":     2,
			"StackFilled":  1,
			"TrackEnded":   1,
		}))
		Expect(snapshot.Killed).To(Equal(map[string]uint64{
			"NextStep":    1,
			"StackFilled": 1,
		}))
		Expect(snapshot.DepositMeV).To(Equal(2.5))

		code, body := get(server, "/api/counters")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"NextStep":2`))

		_, metrics := get(server, "/metrics")
		Expect(metrics).To(ContainSubstring(
			`steptrace_notifications_total{position="NextStep",worker="3"} 2`))
		Expect(metrics).To(ContainSubstring(
			`steptrace_killed_total{position="StackFilled"} 1`))
		Expect(metrics).To(ContainSubstring(
			"steptrace_energy_deposit_mev_total 2.5"))
	})

	It("should not share the snapshot maps", func() {
		snapshot := m.Counter().Snapshot()
		snapshot.Notifications["NextStep"] = 7

		Expect(m.Counter().Snapshot().Notifications).To(BeEmpty())
	})

	It("should show the registered tracers", func() {
		t := verbose.MakeBuilder().
			WithVerbosity(2).
			WithTrackIDs(4).
			WithWriter(io.Discard).
			Build("Worker[0].SteppingVerbose")
		m.RegisterTracer("w0", t)

		code, body := get(server, "/api/tracers")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(Equal(`["w0"]`))

		code, body = get(server, "/api/tracer/w0")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("Worker[0].SteppingVerbose"))

		code, _ = get(server, "/api/tracer/w1")
		Expect(code).To(Equal(http.StatusNotFound))
	})

	It("should report the process resources", func() {
		code, body := get(server, "/api/resource")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("memory_size"))
	})

	It("should serve the monitor page", func() {
		code, body := get(server, "/")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should start and stop a server", func() {
		url, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(HavePrefix("http://localhost:"))
		Expect(m.URL()).To(Equal(url))

		_, err = m.StartServer()
		Expect(err).To(HaveOccurred())

		rsp, err := http.Get(url + "/api/counters")
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))

		Expect(m.Shutdown(context.Background())).To(Succeed())
	})

	It("should not open a browser before the server starts", func() {
		Expect(m.OpenBrowser()).To(HaveOccurred())
	})
})
