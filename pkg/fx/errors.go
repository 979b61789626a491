package fx

import (
	"fmt"

	kerrors "github.com/kirei-dev/kirei/internal/errors"
)

// Sentinel errors. Errors returned by this package carry the same code
// and match these with errors.Is.
var (
	ErrInvalidTarget      = kerrors.New("FX001")
	ErrNotCallable        = kerrors.New("FX002")
	ErrReadonly           = kerrors.New("FX003")
	ErrRecursionLimit     = kerrors.New("FX004")
	ErrInvalidWatchSource = kerrors.New("FX005")
	ErrJobPanicked        = kerrors.New("FX006")
)

func invalidTargetError(target any) error {
	return kerrors.New("FX001").
		WithDetailf("cannot make %T reactive", target).
		WithSuggestion("Wrap an *fx.Object, *fx.Array, *fx.Map or *fx.Set").
		WithExample(`state := fx.ReactiveObject(fx.NewObject("count", 0))`)
}

func readonlyError(op TriggerOp, key any) *kerrors.KireiError {
	return kerrors.New("FX003").WithDetailf("%s of key %v rejected", op, key)
}

func recursionError(e *Fx, limit int) *kerrors.KireiError {
	return kerrors.New("FX004").
		WithDetailf("effect %d ran more than %d times in one flush", e.ID(), limit).
		WithSuggestion("Stop writing state the effect itself reads, or raise fx.recursionLimit")
}

func jobPanicError(e *Fx, v any) *kerrors.KireiError {
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("%v", v)
	}
	return kerrors.New("FX006").
		WithDetailf("effect %d", e.ID()).
		Wrap(err)
}
