// Package models holds the singleton state cells of an app.
//
// Each model type T has exactly one cell, created from T's zero value and
// looked up by T's static type. Access goes through scoped borrows that are
// checked at run time: any number of shared borrows, or a single exclusive
// one. Borrows must be released before a handler returns or a task suspends.
//
// The store is not safe for concurrent use; callers confine it to one
// logical thread.
package models

import (
	"reflect"

	"github.com/rescp17/tunePlayer/pkg/orderedmap"
)

const (
	sharedBorrow    = "shared"
	exclusiveBorrow = "exclusive"
)

type cell struct {
	typ     reflect.Type
	value   any
	readers int
	writer  bool
}

func (c *cell) held() string {
	if c.writer {
		return exclusiveBorrow
	}
	return sharedBorrow
}

// Store is the type-keyed collection of model cells.
type Store struct {
	cells *orderedmap.Map[reflect.Type, *cell]
}

// Source is anything that can hand out the model store. The app and its
// handler context implement it and check thread affinity on every call.
type Source interface {
	ModelStore() *Store
}

func NewStore() *Store {
	return &Store{cells: orderedmap.New[reflect.Type, *cell]()}
}

// ModelStore lets a bare Store be used wherever a Source is accepted.
func (s *Store) ModelStore() *Store {
	return s
}

// Types lists the registered model types in registration order.
func (s *Store) Types() []reflect.Type {
	return s.cells.Keys()
}

func (s *Store) Len() int {
	return s.cells.Len()
}

// Insert registers T with its zero value. It panics with *DuplicateError if T
// is already registered.
func Insert[T any](s *Store) Handle[T] {
	typ := reflect.TypeFor[T]()
	if s.cells.Has(typ) {
		panic(&DuplicateError{Type: typ})
	}
	s.cells.Set(typ, &cell{typ: typ, value: new(T)})
	return Handle[T]{}
}

// Has reports whether T is registered.
func Has[T any](src Source) bool {
	return src.ModelStore().cells.Has(reflect.TypeFor[T]())
}

func (s *Store) lookup(typ reflect.Type) *cell {
	c, ok := s.cells.Get(typ)
	if !ok {
		panic(&LookupError{Type: typ})
	}
	return c
}

// Read takes a shared borrow of T.
func Read[T any](src Source) *Ref[T] {
	c := src.ModelStore().lookup(reflect.TypeFor[T]())
	if c.writer {
		panic(&BorrowError{Type: c.typ, Wanted: sharedBorrow, Held: exclusiveBorrow})
	}
	c.readers++
	return &Ref[T]{c: c, v: c.value.(*T)}
}

// Write takes an exclusive borrow of T.
func Write[T any](src Source) *MutRef[T] {
	c := src.ModelStore().lookup(reflect.TypeFor[T]())
	if c.writer || c.readers > 0 {
		panic(&BorrowError{Type: c.typ, Wanted: exclusiveBorrow, Held: c.held()})
	}
	c.writer = true
	return &MutRef[T]{c: c, v: c.value.(*T)}
}

// Get returns a copy of T, holding the borrow only for the copy.
func Get[T any](src Source) T {
	r := Read[T](src)
	defer r.Release()
	return *r.v
}

// Update runs fn with exclusive access to T.
func Update[T any](src Source, fn func(m *T)) {
	w := Write[T](src)
	defer w.Release()
	fn(w.v)
}
