// Package tohost stores the capabilities a host shell lends to the app:
// player control, toasts, routing, the view-state sink and so on.
//
// Capabilities are keyed by their static type, usually an interface type,
// and are shared rather than owned because the host may keep calling into
// them. Implementations must be safe for use from any goroutine.
package tohost

import (
	"fmt"
	"reflect"

	"github.com/rescp17/tunePlayer/pkg/orderedmap"
)

// LookupError is the panic value for a capability that was never installed.
type LookupError struct {
	Type reflect.Type
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("to-host capability %s is not registered", e.Type)
}

// DuplicateError is the panic value for installing a capability type twice.
type DuplicateError struct {
	Type reflect.Type
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("to-host capability %s is already registered", e.Type)
}

// Builder collects capabilities before the app is built.
type Builder struct {
	entries *orderedmap.Map[reflect.Type, any]
}

func NewBuilder() *Builder {
	return &Builder{entries: orderedmap.New[reflect.Type, any]()}
}

// Add installs impl under the capability type C.
func Add[C any](b *Builder, impl C) {
	typ := reflect.TypeFor[C]()
	if b.entries.Has(typ) {
		panic(&DuplicateError{Type: typ})
	}
	if any(impl) == nil {
		panic(fmt.Sprintf("to-host capability %s is nil", typ))
	}
	b.entries.Set(typ, impl)
}

// Build freezes the collected capabilities.
func (b *Builder) Build() *Registry {
	return &Registry{entries: b.entries}
}

// Registry is the immutable set of installed capabilities.
type Registry struct {
	entries *orderedmap.Map[reflect.Type, any]
}

// Types lists installed capability types in installation order.
func (r *Registry) Types() []reflect.Type {
	return r.entries.Keys()
}

// Source is anything that can hand out the registry.
type Source interface {
	ToHosts() *Registry
}

// ToHosts lets a bare Registry be used as a Source.
func (r *Registry) ToHosts() *Registry {
	return r
}

// Lookup returns the capability C if installed.
func Lookup[C any](src Source) (C, bool) {
	v, ok := src.ToHosts().entries.Get(reflect.TypeFor[C]())
	if !ok {
		var zero C
		return zero, false
	}
	return v.(C), true
}

// Get returns the capability C and panics with *LookupError if it is
// missing.
func Get[C any](src Source) C {
	c, ok := Lookup[C](src)
	if !ok {
		panic(&LookupError{Type: reflect.TypeFor[C]()})
	}
	return c
}

// Of is the single entry point for fetching a capability from a handler
// context or app. Generated XxxOf helpers (see cmd/tohostgen) forward here.
func Of[C any](src Source) C {
	return Get[C](src)
}
