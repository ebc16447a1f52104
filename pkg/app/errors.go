package app

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/rescp17/tunePlayer/pkg/async"
	"github.com/rescp17/tunePlayer/pkg/concurrency"
	"github.com/rescp17/tunePlayer/pkg/models"
	"github.com/rescp17/tunePlayer/pkg/tohost"
)

// ErrorKind classifies the programmer errors the runtime panics with.
type ErrorKind int

const (
	// KindConfiguration covers duplicate registrations, a missing async
	// adapter and thread-affinity violations.
	KindConfiguration ErrorKind = iota
	// KindLookup covers access to an unregistered model, view-model or
	// capability.
	KindLookup
	// KindBorrow covers violations of the model borrow rules.
	KindBorrow
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindLookup:
		return "lookup"
	case KindBorrow:
		return "borrow"
	default:
		return "unknown"
	}
}

// Error is the panic value for app-level misconfiguration.
type Error struct {
	Kind ErrorKind
	Op   string
	Type reflect.Type
	Msg  string
}

func (e *Error) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("%s error in %s: %s %s", e.Kind, e.Op, e.Type, e.Msg)
	}
	return fmt.Sprintf("%s error in %s: %s", e.Kind, e.Op, e.Msg)
}

// KindOf classifies a value recovered from a runtime panic. It reports false
// for panics that did not come from the runtime.
func KindOf(recovered any) (ErrorKind, bool) {
	err, ok := recovered.(error)
	if !ok {
		return 0, false
	}

	var appErr *Error
	var affinity *concurrency.AffinityError
	var modelDup *models.DuplicateError
	var hostDup *tohost.DuplicateError
	var modelLookup *models.LookupError
	var hostLookup *tohost.LookupError
	var borrow *models.BorrowError

	switch {
	case errors.As(err, &appErr):
		return appErr.Kind, true
	case errors.As(err, &borrow):
		return KindBorrow, true
	case errors.As(err, &modelLookup), errors.As(err, &hostLookup):
		return KindLookup, true
	case errors.As(err, &affinity), errors.As(err, &modelDup), errors.As(err, &hostDup),
		errors.Is(err, async.ErrNoAdapter):
		return KindConfiguration, true
	}
	return 0, false
}
