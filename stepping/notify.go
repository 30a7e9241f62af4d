package stepping

// NotifyBeginOfEvent tells the hooks of the domain that an event starts.
func NotifyBeginOfEvent(domain Hookable, eventID int) {
	invoke(domain, HookPosBeginOfEvent, EventStart{EventID: eventID})
}

// NotifyTrackStarted tells the hooks of the domain that a track starts.
func NotifyTrackStarted(domain Hookable, track *Track, isKilled bool) {
	invoke(domain, HookPosTrackStarted,
		TrackStart{Track: track, IsKilled: isKilled})
}

// NotifyNextStep tells the hooks of the domain that a step was taken.
func NotifyNextStep(domain Hookable, step *Step, isKilled bool) {
	invoke(domain, HookPosNextStep, StepTaken{Step: step, IsKilled: isKilled})
}

// NotifyStackFilled tells the hooks of the domain that a track was queued.
func NotifyStackFilled(domain Hookable, track *Track, isKilled bool) {
	invoke(domain, HookPosStackFilled,
		TrackStacked{Track: track, IsKilled: isKilled})
}

// NotifyTrackEnded tells the hooks of the domain that a track finished.
func NotifyTrackEnded(domain Hookable, track *Track) {
	invoke(domain, HookPosTrackEnded, TrackEnd{Track: track})
}

func invoke(domain Hookable, pos *HookPos, item any) {
	if domain.NumHooks() == 0 {
		return
	}

	domain.InvokeHook(HookCtx{
		Domain: domain,
		Pos:    pos,
		Item:   item,
	})
}
