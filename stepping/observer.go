package stepping

import (
	"encoding/json"
	"fmt"
)

// Hook positions for the stepping lifecycle. Within one worker they fire in
// the order {event start, (track start, (step)+, stack fill*, track end)+}+.
var (
	// HookPosBeginOfEvent is triggered when an event starts.
	HookPosBeginOfEvent = &HookPos{Name: "BeginOfEvent"}

	// HookPosTrackStarted is triggered before the first step of a track.
	HookPosTrackStarted = &HookPos{Name: "TrackStarted"}

	// HookPosNextStep is triggered after each step of a track.
	HookPosNextStep = &HookPos{Name: "NextStep"}

	// HookPosStackFilled is triggered when a track is pushed onto the
	// pending-track stack.
	HookPosStackFilled = &HookPos{Name: "StackFilled"}

	// HookPosTrackEnded is triggered after the last step of a track.
	HookPosTrackEnded = &HookPos{Name: "TrackEnded"}
)

var hookPosByName = map[string]*HookPos{
	HookPosBeginOfEvent.Name: HookPosBeginOfEvent,
	HookPosTrackStarted.Name: HookPosTrackStarted,
	HookPosNextStep.Name:     HookPosNextStep,
	HookPosStackFilled.Name:  HookPosStackFilled,
	HookPosTrackEnded.Name:   HookPosTrackEnded,
}

// HookPosByName returns the stepping hook position with the given name, or
// nil if there is none.
func HookPosByName(name string) *HookPos {
	return hookPosByName[name]
}

// EventStart is the item of HookPosBeginOfEvent.
type EventStart struct {
	EventID int `json:"event_id"`
}

// TrackStart is the item of HookPosTrackStarted.
type TrackStart struct {
	Track    *Track `json:"track"`
	IsKilled bool   `json:"is_killed"`
}

// StepTaken is the item of HookPosNextStep.
type StepTaken struct {
	Step     *Step `json:"step"`
	IsKilled bool  `json:"is_killed"`
}

// TrackStacked is the item of HookPosStackFilled.
type TrackStacked struct {
	Track    *Track `json:"track"`
	IsKilled bool   `json:"is_killed"`
}

// TrackEnd is the item of HookPosTrackEnded.
type TrackEnd struct {
	Track *Track `json:"track"`
}

// DecodeItem decodes a JSON payload into the item type that belongs to the
// given position.
func DecodeItem(pos *HookPos, payload []byte) (any, error) {
	var (
		item any
		err  error
	)

	switch pos {
	case HookPosBeginOfEvent:
		v := EventStart{}
		err = json.Unmarshal(payload, &v)
		item = v
	case HookPosTrackStarted:
		v := TrackStart{}
		err = json.Unmarshal(payload, &v)
		item = v
	case HookPosNextStep:
		v := StepTaken{}
		err = json.Unmarshal(payload, &v)
		item = v
	case HookPosStackFilled:
		v := TrackStacked{}
		err = json.Unmarshal(payload, &v)
		item = v
	case HookPosTrackEnded:
		v := TrackEnd{}
		err = json.Unmarshal(payload, &v)
		item = v
	default:
		return nil, fmt.Errorf("unknown hook position %v", pos)
	}

	if err != nil {
		return nil, fmt.Errorf("decoding %s item: %w", pos.Name, err)
	}

	return item, nil
}

// Observer receives the five stepping notifications. Implementations are
// called synchronously on the worker that transports the track.
type Observer interface {
	// BeginOfEvent is called when a new event starts.
	BeginOfEvent(eventID int)

	// TrackStarted is called before a track takes its first step. It
	// reports whether the observer is interested in the track.
	TrackStarted(track *Track, isKilled bool) bool

	// NextStep is called after every step.
	NextStep(step *Step, isKilled bool)

	// StackFilled is called when a track is queued for later transport.
	StackFilled(track *Track, isKilled bool)

	// TrackEnded is called when the transport of a track finishes.
	TrackEnded(track *Track)
}

// Dispatch forwards a hook invocation to the matching Observer method.
// Positions that are not stepping positions and items of the wrong type are
// ignored.
func Dispatch(o Observer, ctx HookCtx) {
	switch ctx.Pos {
	case HookPosBeginOfEvent:
		if item, ok := ctx.Item.(EventStart); ok {
			o.BeginOfEvent(item.EventID)
		}
	case HookPosTrackStarted:
		if item, ok := ctx.Item.(TrackStart); ok {
			o.TrackStarted(item.Track, item.IsKilled)
		}
	case HookPosNextStep:
		if item, ok := ctx.Item.(StepTaken); ok {
			o.NextStep(item.Step, item.IsKilled)
		}
	case HookPosStackFilled:
		if item, ok := ctx.Item.(TrackStacked); ok {
			o.StackFilled(item.Track, item.IsKilled)
		}
	case HookPosTrackEnded:
		if item, ok := ctx.Item.(TrackEnd); ok {
			o.TrackEnded(item.Track)
		}
	}
}

type observerHook struct {
	o Observer
}

func (h *observerHook) Func(ctx HookCtx) {
	Dispatch(h.o, ctx)
}

// ObserverHook wraps an Observer so that it can be attached to a Hookable.
func ObserverHook(o Observer) Hook {
	return &observerHook{o: o}
}
