// Package viewstate projects models into immutable snapshots for the host.
//
// A Pipeline holds one projector per model type. After every event each
// projector writes its part of the root state into a fresh value, the parts
// are merged left to right, and the result is pushed to the Sink[R]
// capability. Projectors only get a shared borrow and must not mutate.
package viewstate

import (
	"fmt"
	"reflect"

	"github.com/rescp17/tunePlayer/pkg/app"
	"github.com/rescp17/tunePlayer/pkg/models"
	"github.com/rescp17/tunePlayer/pkg/tohost"
)

// Sink is the host capability that receives snapshots.
type Sink[R any] interface {
	HandleNotify(root R)
}

type projector[R any] struct {
	model reflect.Type
	fn    func(s app.Scope, root *R)
}

// Pipeline is an app.Projector producing root states of type R.
type Pipeline[R any] struct {
	merge      func(dst, src *R)
	projectors []projector[R]
}

// NewPipeline returns an empty pipeline. merge folds src into dst; nil
// means Overlay.
func NewPipeline[R any](merge func(dst, src *R)) *Pipeline[R] {
	if merge == nil {
		merge = Overlay[R]
	}
	return &Pipeline[R]{merge: merge}
}

// Register adds a projector reading model S.
func Register[S, R any](p *Pipeline[R], fn func(s *S, root *R)) {
	p.projectors = append(p.projectors, projector[R]{
		model: reflect.TypeFor[S](),
		fn: func(scope app.Scope, root *R) {
			ref := models.Read[S](scope)
			defer ref.Release()
			fn(ref.Get(), root)
		},
	})
}

// Models lists the model types projected, in registration order.
func (p *Pipeline[R]) Models() []reflect.Type {
	out := make([]reflect.Type, len(p.projectors))
	for i, pr := range p.projectors {
		out[i] = pr.model
	}
	return out
}

// Build runs every projector and returns the merged root state.
func (p *Pipeline[R]) Build(scope app.Scope) R {
	var acc R
	for _, pr := range p.projectors {
		var part R
		pr.fn(scope, &part)
		p.merge(&acc, &part)
	}
	return acc
}

// Project builds the root state and hands it to the Sink[R] capability.
func (p *Pipeline[R]) Project(scope app.Scope) {
	root := p.Build(scope)
	tohost.Get[Sink[R]](scope).HandleNotify(root)
}

// Overlay merges src into dst field by field, later values winning.
// Nilable fields (pointers, slices, maps, interfaces, funcs, channels) are
// taken from src when non-nil; other fields when non-zero. R must be a
// struct type.
func Overlay[R any](dst, src *R) {
	dv := reflect.ValueOf(dst).Elem()
	sv := reflect.ValueOf(src).Elem()
	if dv.Kind() != reflect.Struct {
		panic(fmt.Sprintf("viewstate: Overlay needs a struct, got %s", dv.Type()))
	}
	for i := range sv.NumField() {
		if !dv.Type().Field(i).IsExported() {
			continue
		}
		f := sv.Field(i)
		switch f.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
			if f.IsNil() {
				continue
			}
		default:
			if f.IsZero() {
				continue
			}
		}
		dv.Field(i).Set(f)
	}
}
