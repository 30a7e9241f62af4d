package verbose

import "github.com/sarchlab/steptrace/stepping"

// Func lets the tracer be attached to a stepping.Hookable directly. Each
// stepping hook position is forwarded to the matching notification method.
func (t *SteppingVerbose) Func(ctx stepping.HookCtx) {
	stepping.Dispatch(t, ctx)
}

var _ stepping.Hook = (*SteppingVerbose)(nil)
