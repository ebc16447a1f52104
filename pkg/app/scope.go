package app

import (
	"reflect"

	"github.com/rescp17/tunePlayer/pkg/models"
	"github.com/rescp17/tunePlayer/pkg/tohost"
)

// Scope is implemented by an App and by the Context handed to view-models.
// The generic accessors below take a Scope.
type Scope interface {
	models.Source
	tohost.Source
	core() *runtime
}

// Model borrows model T for reading. Release the borrow before returning
// from the handler.
func Model[T any](s Scope) *models.Ref[T] {
	return models.Read[T](s)
}

// ModelMut borrows model T exclusively.
func ModelMut[T any](s Scope) *models.MutRef[T] {
	return models.Write[T](s)
}

// ToHost returns the host capability C. It panics if C was never installed.
func ToHost[C any](s Scope) C {
	return tohost.Get[C](s)
}

// VM returns the registered view-model whose dynamic type is V.
func VM[V any](s Scope) V {
	rt := s.core()
	rt.thread.Assert("view-model lookup")
	typ := reflect.TypeFor[V]()
	vm, ok := rt.vms.Get(typ)
	if !ok {
		panic(&Error{Kind: KindLookup, Op: "VM", Type: typ, Msg: "is not a registered view-model"})
	}
	return vm.(V)
}
