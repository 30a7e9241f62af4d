// Package verbose provides SteppingVerbose, a selective text tracer for
// particle transport.
//
// A SteppingVerbose observes the five stepping notifications of a worker and
// decides, per event and per track, whether to print. An event is selected
// when the verbosity is positive and the event ID is listed (or no event ID
// is configured). A track of a selected event is selected when its ID is
// listed, or, when no track ID is configured, when its kinetic energy
// reaches the threshold.
//
// Output of a selected track, by verbosity:
//
//	1   track header, creation row, one summary row per step
//	2   plus the list of secondaries on the step that ends the track
//	3+  plus a pre/post step point table before every summary row, and a
//	    line for every queued secondary above the threshold
//
// A track ends on a step that leaves the world, that the host reports as
// killed, or that leaves the track stopped and killed.
//
// Tracers are built with a Builder and attached to a host as a hook:
//
//	t := verbose.MakeBuilder().
//	    WithVerbosity(2).
//	    WithEkinThreshold(1 * units.GeV).
//	    WithSink(sink).
//	    Build("Worker[0].SteppingVerbose")
//	worker.AcceptHook(t)
//
// The tracer never lets a rendering fault reach the host. A field that
// cannot be rendered is left blank and counted in Faults.
package verbose
