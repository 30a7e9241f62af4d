package verbose

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// chunkedWriter forwards every byte in its own write call, which makes any
// interleaving of unsynchronized writers visible.
type chunkedWriter struct {
	buf bytes.Buffer
}

func (w *chunkedWriter) Write(p []byte) (int, error) {
	for _, c := range p {
		w.buf.WriteByte(c)
	}

	return len(p), nil
}

var _ = Describe("Sink", func() {
	It("should keep blocks from different workers intact", func() {
		w := &chunkedWriter{}
		sink := NewSink(w)

		var wg sync.WaitGroup
		for worker := 0; worker < 8; worker++ {
			wg.Add(1)
			go func(worker int) {
				defer GinkgoRecover()
				defer wg.Done()
				for i := 0; i < 50; i++ {
					block := fmt.Sprintf("begin %d\nline %d\nend %d\n",
						worker, i, worker)
					_, err := sink.WriteString(block)
					Expect(err).NotTo(HaveOccurred())
				}
			}(worker)
		}
		wg.Wait()

		lines := strings.Split(strings.TrimSuffix(w.buf.String(), "\n"), "\n")
		Expect(lines).To(HaveLen(8 * 50 * 3))

		for i := 0; i < len(lines); i += 3 {
			var begin, end, n int
			_, err := fmt.Sscanf(lines[i], "begin %d", &begin)
			Expect(err).NotTo(HaveOccurred())
			_, err = fmt.Sscanf(lines[i+1], "line %d", &n)
			Expect(err).NotTo(HaveOccurred())
			_, err = fmt.Sscanf(lines[i+2], "end %d", &end)
			Expect(err).NotTo(HaveOccurred())
			Expect(end).To(Equal(begin))
		}
	})

	It("should let tracers of several workers share one sink", func() {
		w := &chunkedWriter{}
		sink := NewSink(w)

		var wg sync.WaitGroup
		for worker := 0; worker < 4; worker++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				t := MakeBuilder().WithVerbosity(3).WithSink(sink).Build("SV")
				for event := 0; event < 10; event++ {
					t.BeginOfEvent(event)
					track := newTrack(1, 2)
					t.TrackStarted(track, false)
					t.NextStep(leavingStep(track), false)
				}
			}()
		}
		wg.Wait()

		out := w.buf.String()
		Expect(strings.Count(out, "++G4Step Information")).To(Equal(40))
		Expect(strings.Count(out, leavingRow+"    ++List of 0")).To(Equal(40))
	})
})
