// Package stepping defines the data a transport host hands to its observers
// and the hook positions it fires them from.
//
// # Data Model
//
// A Step is a read-only snapshot of one transport step: the Track (in its
// post-step state), the pre- and post-step StepPoints, the step length, the
// energy deposit and the secondaries produced at the step. Optional
// references are pointers and are nil when absent:
//
//   - Volume: nil when the point is outside the world
//   - Process: nil when no process defined the step
//   - ParticleDefinition: nil when the species is unresolved
//
// Quantities are in the base units of package units (mm, MeV, ns).
//
// # Hook Positions
//
// Hosts embed a HookableBase and fire one hook position per lifecycle
// point:
//
//   - HookPosBeginOfEvent (EventStart)
//   - HookPosTrackStarted (TrackStart)
//   - HookPosNextStep (StepTaken)
//   - HookPosStackFilled (TrackStacked)
//   - HookPosTrackEnded (TrackEnd)
//
// The Notify helpers build the HookCtx and skip the work entirely when no
// hook is attached:
//
//	stepping.NotifyBeginOfEvent(worker, eventID)
//	stepping.NotifyTrackStarted(worker, track, false)
//
// Observers implement the five-method Observer interface and are attached
// with ObserverHook, or implement Hook directly and call Dispatch.
package stepping
