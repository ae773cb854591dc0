// Package piquouze injects named dependencies into funcs and structs.
//
// A Container maps names to values and factories. Inject resolves the names a
// functor declares, transitively and cycle-checked, and returns a func that
// calls it. Factory values are cached according to their Policy.
package piquouze

import (
	"reflect"

	"github.com/dozm/piquouze/errorx"
	"github.com/dozm/piquouze/reflectx"
)

// Get resolves the dependency name from c as a T.
func Get[T any](c *Container, name string) (result T, err error) {
	f, err := c.Inject(Arrow(func(v any) any { return v }, name), nil)
	if err != nil {
		return
	}
	return Invoke[T](f)
}

// MustGet is Get panicking on error.
func MustGet[T any](c *Container, name string) T {
	result, err := Get[T](c, name)
	if err != nil {
		panic(err)
	}
	return result
}

// Invoke calls f and asserts its result to T. A nil result gives the zero T.
func Invoke[T any](f Injected, extra ...any) (result T, err error) {
	v, err := f(extra...)
	if err != nil || v == nil {
		return
	}

	result, ok := v.(T)
	if !ok {
		err = &errorx.TypeIncompatibilityError{To: reflectx.TypeOf[T](), From: reflect.TypeOf(v)}
	}
	return
}

// MustInvoke is Invoke panicking on error.
func MustInvoke[T any](f Injected, extra ...any) T {
	result, err := Invoke[T](f, extra...)
	if err != nil {
		panic(err)
	}
	return result
}

// Call injects target from c and calls it with extra arguments.
func Call(c *Container, target any, extra ...any) (any, error) {
	f, err := c.Inject(target, nil)
	if err != nil {
		return nil, err
	}
	return f(extra...)
}
