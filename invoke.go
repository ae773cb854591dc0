package piquouze

import (
	"fmt"
	"reflect"

	"github.com/dozm/piquouze/errorx"
	"github.com/dozm/piquouze/reflectx"
	"github.com/dozm/piquouze/util"
)

// invocation calls a functor of one kind with its dependencies and the
// caller's extra arguments.
type invocation func(sh *shape, fn reflect.Value, dependencies []any, extra []any) (any, error)

var invocations = map[Kind]invocation{
	Kind_Arrow:    invokeArrow,
	Kind_Function: invokeFunction,
	Kind_Class:    invokeClass,
	Kind_Method:   invokeMethod,
}

func invokeArrow(sh *shape, fn reflect.Value, dependencies []any, extra []any) (any, error) {
	out, err := call(sh.typ, fn, nil, util.Concat(dependencies, extra))
	if err != nil {
		return nil, err
	}
	return unpackResults(sh.typ, out)
}

// invokeFunction calls a plain function. A constructor gets a fresh receiver
// first; it yields its result when that is an object or when the receiver
// was left untouched, else the receiver.
func invokeFunction(sh *shape, fn reflect.Value, dependencies []any, extra []any) (any, error) {
	if !sh.receiver {
		return invokeArrow(sh, fn, dependencies, extra)
	}

	instance := reflect.New(sh.typ.In(0).Elem())
	out, err := call(sh.typ, fn, []reflect.Value{instance}, util.Concat(dependencies, extra))
	if err != nil {
		return nil, err
	}

	result, err := unpackResults(sh.typ, out)
	if err != nil {
		return nil, err
	}

	if isObject(result) || instance.Elem().IsZero() {
		return result, nil
	}
	return instance.Interface(), nil
}

func invokeMethod(sh *shape, fn reflect.Value, dependencies []any, extra []any) (any, error) {
	if !sh.receiver {
		return invokeArrow(sh, fn, dependencies, extra)
	}

	if len(extra) == 0 {
		return nil, errorx.NewArgumentError("missing method receiver")
	}
	receiver, err := argValue(extra[0], sh.typ.In(0))
	if err != nil {
		return nil, err
	}

	out, err := call(sh.typ, fn, []reflect.Value{receiver}, util.Concat(dependencies, extra[1:]))
	if err != nil {
		return nil, err
	}
	return unpackResults(sh.typ, out)
}

// invokeClass allocates the struct and fills its slots in order.
func invokeClass(sh *shape, _ reflect.Value, dependencies []any, extra []any) (any, error) {
	args := util.Concat(dependencies, extra)
	if len(args) > len(sh.slots) {
		return nil, errorx.NewArgumentError(fmt.Sprintf("%d extra parameters", len(args)-len(sh.slots)))
	}

	instance := reflect.New(sh.typ)
	for i, arg := range args {
		field := instance.Elem().Field(sh.slots[i])
		v, err := argValue(arg, field.Type())
		if err != nil {
			return nil, err
		}
		field.Set(v)
	}
	return instance.Interface(), nil
}

// call invokes fn with the leading values followed by args, spreading any
// surplus into a variadic tail.
func call(ft reflect.Type, fn reflect.Value, leading []reflect.Value, args []any) ([]reflect.Value, error) {
	fixed := reflectx.NumFixedIn(ft)
	n := len(leading) + len(args)
	if n < fixed {
		return nil, errorx.NewArgumentError(fmt.Sprintf("missing parameters: %d expected, %d given", fixed, n))
	}
	if n > fixed && !ft.IsVariadic() {
		return nil, errorx.NewArgumentError(fmt.Sprintf("%d extra parameters", n-fixed))
	}

	in := make([]reflect.Value, 0, n)
	in = append(in, leading...)
	for _, arg := range args {
		var t reflect.Type
		if i := len(in); i < fixed {
			t = ft.In(i)
		} else {
			t = ft.In(fixed).Elem()
		}

		v, err := argValue(arg, t)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}

	return fn.Call(in), nil
}

func argValue(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, &errorx.TypeIncompatibilityError{To: t, From: v.Type()}
	}
	if v.Type() != t {
		// interface parameters
		converted := reflect.New(t).Elem()
		converted.Set(v)
		return converted, nil
	}
	return v, nil
}

func unpackResults(ft reflect.Type, out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if reflectx.IsErrorType(ft.Out(0)) && ft.Out(0).Kind() == reflect.Interface {
			if out[0].IsNil() {
				return nil, nil
			}
			return nil, out[0].Interface().(error)
		}
		return out[0].Interface(), nil
	case 2:
		if out[1].IsNil() {
			return out[0].Interface(), nil
		}
		if err, ok := out[1].Interface().(error); ok {
			return nil, err
		}
		return nil, fmt.Errorf("the type of the second out parameter is not error")
	default:
		return nil, fmt.Errorf("unexpected output parameters")
	}
}

// isObject reports whether v is a non-nil composite value rather than a
// scalar or nil.
func isObject(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return !rv.IsNil()
	case reflect.Struct, reflect.Array:
		return true
	}
	return false
}
