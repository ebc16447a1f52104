package models

import (
	"fmt"
	"reflect"
)

// LookupError is the panic value for access to an unregistered model type.
type LookupError struct {
	Type reflect.Type
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("model %s is not registered", e.Type)
}

// DuplicateError is the panic value for registering a model type twice.
type DuplicateError struct {
	Type reflect.Type
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("model %s is already registered", e.Type)
}

// BorrowError is the panic value for a borrow that conflicts with one already
// held on the same model.
type BorrowError struct {
	Type   reflect.Type
	Wanted string
	Held   string
}

func (e *BorrowError) Error() string {
	return fmt.Sprintf("cannot borrow model %s as %s: already borrowed as %s", e.Type, e.Wanted, e.Held)
}
