package stepping

// StepStatus tells why a step point terminated.
type StepStatus int

// The closed set of step statuses.
const (
	StepStatusUndefined StepStatus = iota
	StepStatusGeomBoundary
	StepStatusAlongStepProc
	StepStatusPostStepProc
	StepStatusAtRestProc
)

// String returns the display name of the status. Values outside the closed
// set are displayed as undefined.
func (s StepStatus) String() string {
	switch s {
	case StepStatusGeomBoundary:
		return "Geom Limit"
	case StepStatusAlongStepProc:
		return "AlongStep Proc."
	case StepStatusPostStepProc:
		return "PostStep Proc"
	case StepStatusAtRestProc:
		return "AtRest Proc"
	default:
		return "Undefined"
	}
}

// TrackStatus is the transport state of a track.
type TrackStatus int

// Track statuses.
const (
	TrackStatusAlive TrackStatus = iota
	TrackStatusStopButAlive
	TrackStatusStopAndKill
	TrackStatusKillTrackAndSecondaries
	TrackStatusSuspend
	TrackStatusPostponeToNextEvent
)

// String returns the name of the status, or "Unknown" for values outside
// the defined set.
func (s TrackStatus) String() string {
	switch s {
	case TrackStatusAlive:
		return "Alive"
	case TrackStatusStopButAlive:
		return "StopButAlive"
	case TrackStatusStopAndKill:
		return "StopAndKill"
	case TrackStatusKillTrackAndSecondaries:
		return "KillTrackAndSecondaries"
	case TrackStatusSuspend:
		return "Suspend"
	case TrackStatusPostponeToNextEvent:
		return "PostponeToNextEvent"
	default:
		return "Unknown"
	}
}
