package models

import "fmt"

// Ref is a shared borrow of a model. The pointer returned by Get must not be
// written through.
type Ref[T any] struct {
	c        *cell
	v        *T
	released bool
}

func (r *Ref[T]) Get() *T {
	if r.released {
		panic(fmt.Sprintf("shared borrow of model %s used after release", r.c.typ))
	}
	return r.v
}

// Value returns a copy of the model.
func (r *Ref[T]) Value() T {
	return *r.Get()
}

// Release ends the borrow. Calling it more than once is a no-op.
func (r *Ref[T]) Release() {
	if r.released {
		return
	}
	r.released = true
	r.c.readers--
}

// MutRef is an exclusive borrow of a model.
type MutRef[T any] struct {
	c        *cell
	v        *T
	released bool
}

func (w *MutRef[T]) Get() *T {
	if w.released {
		panic(fmt.Sprintf("exclusive borrow of model %s used after release", w.c.typ))
	}
	return w.v
}

// Set replaces the whole model value.
func (w *MutRef[T]) Set(v T) {
	*w.Get() = v
}

// Release ends the borrow. Calling it more than once is a no-op.
func (w *MutRef[T]) Release() {
	if w.released {
		return
	}
	w.released = true
	w.c.writer = false
}

// Handle is a zero-size token for a registered model type. It is returned by
// Insert and carries only the type, so it can be copied freely into
// view-models at build time.
type Handle[T any] struct{}

func (Handle[T]) Read(src Source) *Ref[T] {
	return Read[T](src)
}

func (Handle[T]) Write(src Source) *MutRef[T] {
	return Write[T](src)
}

func (Handle[T]) Get(src Source) T {
	return Get[T](src)
}

func (Handle[T]) Update(src Source, fn func(m *T)) {
	Update(src, fn)
}
