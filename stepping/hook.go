package stepping

// HookPos identifies a point of the transport lifecycle, such as the start
// of an event or the end of a step.
type HookPos struct {
	Name string
}

// HookCtx describes one notification.
type HookCtx struct {
	// Domain is the host that raised the notification. For the shower host
	// it is the worker.
	Domain Hookable

	// Pos is the lifecycle point.
	Pos *HookPos

	// Item is the payload: EventStart, TrackStart, StepTaken, TrackStacked
	// or TrackEnd.
	Item any
}

// Hookable is implemented by hosts that notify hooks.
type Hookable interface {
	// AcceptHook attaches a hook. Hosts attach their hooks before the first
	// event; a hook cannot be detached.
	AcceptHook(hook Hook)

	// NumHooks counts the attached hooks.
	NumHooks() int

	// Hooks lists the attached hooks in attach order.
	Hooks() []Hook

	// InvokeHook delivers a notification to every attached hook.
	InvokeHook(ctx HookCtx)
}

// Hook receives the notifications of the hosts it is attached to.
type Hook interface {
	Func(ctx HookCtx)
}

// HookableBase keeps the hooks of a host. Hosts embed it to satisfy
// Hookable.
type HookableBase struct {
	hooks []Hook
}

// NewHookableBase returns a HookableBase without hooks.
func NewHookableBase() *HookableBase {
	return &HookableBase{hooks: []Hook{}}
}

// NumHooks counts the attached hooks.
func (b *HookableBase) NumHooks() int {
	return len(b.hooks)
}

// Hooks lists the attached hooks in attach order.
func (b *HookableBase) Hooks() []Hook {
	return b.hooks
}

// AcceptHook attaches a hook. A hook attached twice would see every
// notification twice, so attaching it again panics.
func (b *HookableBase) AcceptHook(hook Hook) {
	for _, attached := range b.hooks {
		if attached == hook {
			panic("hook is already attached")
		}
	}

	b.hooks = append(b.hooks, hook)
}

// InvokeHook delivers ctx to the hooks in attach order.
func (b *HookableBase) InvokeHook(ctx HookCtx) {
	for _, h := range b.hooks {
		h.Func(ctx)
	}
}

var _ Hookable = (*HookableBase)(nil)
