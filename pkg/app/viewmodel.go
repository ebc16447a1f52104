package app

// ViewModel handles the events of an App. It keeps no state of its own;
// everything it remembers lives in models reached through cx.
//
// OnEvent must release every model borrow before it returns.
type ViewModel[E any] interface {
	OnEvent(cx *Context[E], e E) error
}

// ViewModelFunc adapts a function to a ViewModel. Each distinct named
// function type registers as its own view-model, so wrap it in a named type
// when more than one is needed.
type ViewModelFunc[E any] func(cx *Context[E], e E) error

func (f ViewModelFunc[E]) OnEvent(cx *Context[E], e E) error {
	return f(cx, e)
}

// ErrorSink is the capability that receives errors returned by view-models.
// Without one, errors are only logged.
type ErrorSink interface {
	HandleError(err error)
}

// Projector builds a view-state snapshot after each event and pushes it to
// the host. It must only read models.
type Projector interface {
	Project(s Scope)
}

// DispatchState is the per-event state of the dispatcher.
type DispatchState int

const (
	StateIdle DispatchState = iota
	StateDispatching
	StateProjecting
)

func (s DispatchState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateProjecting:
		return "projecting"
	default:
		return "unknown"
	}
}
