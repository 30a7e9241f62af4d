package verbose

import (
	"bytes"
	"slices"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/steptrace/units"
)

var _ = Describe("Event selection", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = new(bytes.Buffer)
	})

	DescribeTable("selects events by verbosity and event IDs",
		func(verbosity int, eventIDs []int, eventID int) {
			t := MakeBuilder().
				WithVerbosity(verbosity).
				WithEventIDs(eventIDs...).
				WithWriter(buf).
				Build("SV")

			t.BeginOfEvent(eventID)

			expected := verbosity > 0 &&
				(len(eventIDs) == 0 || slices.Contains(eventIDs, eventID))
			event, _ := t.Selection()
			Expect(event).To(Equal(expected))

			if expected {
				Expect(buf.String()).To(Equal(
					"========== Event #" + itoa(eventID) + " =============\n\n"))
			} else {
				Expect(buf.Len()).To(BeZero())
			}
		},
		Entry("silent tracer", 0, nil, 1),
		Entry("negative verbosity", -1, nil, 1),
		Entry("all events", 1, nil, 5),
		Entry("listed event", 1, []int{3, 5}, 5),
		Entry("unlisted event", 2, []int{3, 5}, 4),
		Entry("silent tracer with listed event", 0, []int{5}, 5),
		Entry("event zero", 3, nil, 0),
	)

	It("should recompute the selection at every event", func() {
		t := MakeBuilder().
			WithVerbosity(1).
			WithEventIDs(2).
			WithWriter(buf).
			Build("SV")

		t.BeginOfEvent(2)
		event, _ := t.Selection()
		Expect(event).To(BeTrue())

		t.BeginOfEvent(3)
		event, _ = t.Selection()
		Expect(event).To(BeFalse())
	})
})

var _ = Describe("Track selection", func() {
	var (
		buf *bytes.Buffer
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
	})

	build := func(trackIDs ...int) *SteppingVerbose {
		return MakeBuilder().
			WithVerbosity(1).
			WithEkinThreshold(1 * units.GeV).
			WithTrackIDs(trackIDs...).
			WithWriter(buf).
			Build("SV")
	}

	DescribeTable("applies the threshold when no track ID is configured",
		func(ekinGeV float64, expected bool) {
			t := build()
			t.BeginOfEvent(1)

			Expect(t.TrackStarted(newTrack(4, ekinGeV), false)).To(Equal(expected))
			_, track := t.Selection()
			Expect(track).To(Equal(expected))
		},
		Entry("above", 2.0, true),
		Entry("exactly at", 1.0, true),
		Entry("below", 0.999, false),
		Entry("zero", 0.0, false),
	)

	DescribeTable("applies membership only when track IDs are configured",
		func(trackID int, ekinGeV float64, expected bool) {
			t := build(7, 9)
			t.BeginOfEvent(1)

			Expect(t.TrackStarted(newTrack(trackID, ekinGeV), false)).
				To(Equal(expected))
		},
		Entry("member below threshold", 7, 0.1, true),
		Entry("member above threshold", 9, 10.0, true),
		Entry("non-member above threshold", 8, 10.0, false),
		Entry("non-member below threshold", 8, 0.1, false),
	)

	It("should never select a track of an unselected event", func() {
		for _, verbosity := range []int{0, 1, 3} {
			t := MakeBuilder().
				WithVerbosity(verbosity).
				WithEventIDs(1).
				WithWriter(buf).
				Build("SV")

			t.BeginOfEvent(2)

			Expect(t.TrackStarted(newTrack(1, 100), false)).To(BeFalse())
			event, track := t.Selection()
			Expect(event).To(BeFalse())
			Expect(track).To(BeFalse())
		}

		Expect(buf.Len()).To(BeZero())
	})

	It("should drop the track selection when the next event is not selected",
		func() {
			t := MakeBuilder().
				WithVerbosity(1).
				WithEventIDs(1).
				WithWriter(buf).
				Build("SV")

			t.BeginOfEvent(1)
			Expect(t.TrackStarted(newTrack(1, 1), false)).To(BeTrue())

			t.BeginOfEvent(2)
			t.TrackStarted(newTrack(2, 1), false)

			_, track := t.Selection()
			Expect(track).To(BeFalse())
		})

	It("should print the track header and the creation row", func() {
		t := build()
		t.BeginOfEvent(5)
		buf.Reset()

		t.TrackStarted(newTrack(1, 2.0), false)

		Expect(buf.String()).To(Equal(
			banner + "\n" +
				"* G4Track Information:   Particle = mu-,   Track ID = 1,   Parent ID = 0\n" +
				banner + "\n" +
				"Step#    X(cm)    Y(cm)    Z(cm) KinE(GeV)  dE(MeV) Step(mm) TrackL(cm)                     PhysVolume ProcName\n" +
				"    0        0        0        0         2                                                      World \n"))
	})

	It("should leave the particle name blank when the species is unknown",
		func() {
			t := build()
			t.BeginOfEvent(5)

			track := newTrack(3, 2.0)
			track.Definition = nil
			track.ParentID = 1

			Expect(t.TrackStarted(track, false)).To(BeTrue())
			Expect(buf.String()).To(ContainSubstring(
				"* G4Track Information:   Particle = ,   Track ID = 3,   Parent ID = 1\n"))
		})

	It("should mark a killed track on the creation row", func() {
		t := build()
		t.BeginOfEvent(5)

		track := newTrack(3, 2.0)
		track.Volume = nil

		t.TrackStarted(track, true)

		Expect(buf.String()).To(HaveSuffix(
			"    0        0        0        0         2 " +
				strings.Repeat(" ", 28) + "isKilled\n"))
	})

	It("should ignore a nil track", func() {
		t := build()
		t.BeginOfEvent(5)

		Expect(t.TrackStarted(nil, false)).To(BeFalse())
	})

	It("should not share the configured IDs with the caller", func() {
		ids := []int{7}
		t := MakeBuilder().WithTrackIDs(ids...).Build("SV")
		ids[0] = 8

		Expect(t.Config().TrackIDs).To(Equal([]int{7}))
	})
})
