package piquouze

import (
	"reflect"
	"sync"

	"github.com/dozm/piquouze/reflectx"
)

// Kind is the invocation category of a functor.
type Kind byte

const (
	Kind_Unknown Kind = iota
	Kind_Function
	Kind_Arrow
	Kind_Class
	Kind_Method
)

func (k Kind) String() string {
	switch k {
	case Kind_Function:
		return "function"
	case Kind_Arrow:
		return "arrow"
	case Kind_Class:
		return "class"
	case Kind_Method:
		return "method"
	default:
		return "unknown"
	}
}

// Marking describes how a functor is injected: its kind, declared name,
// ordered dependency names and default suppliers for some of them.
type Marking struct {
	Kind     Kind
	Name     string
	Params   []string
	Defaults map[string]func() any

	shape shape
}

// HasDefault reports whether name has a default supplier.
func (m *Marking) HasDefault(name string) bool {
	_, ok := m.Defaults[name]
	return ok
}

// shape is what the invocation strategies need to call the functor.
type shape struct {
	// func type, or struct type for classes
	typ reflect.Type
	// Kind_Function: the engine allocates *receiver and passes it first.
	// Kind_Method: the caller passes the receiver as first argument.
	receiver bool
	// Kind_Class: field indices filled positionally.
	slots []int
}

// Functor carries caller-declared metadata for a callable. Zero fields are
// filled by scanning Fn, non-zero fields are used as they are.
//
// Fn is a func value, a reflect.Type of a struct (or pointer to struct), or a
// typed nil struct pointer such as (*Server)(nil).
//
// The marking is computed on first use (registration or injection) and kept
// for the life of the Functor. Changes made afterwards, through the fields or
// through Named and WithDefault, are not seen; declare a new Functor instead.
type Functor struct {
	Fn       any
	Kind     Kind
	Name     string
	Params   []string
	Defaults map[string]any

	receiver bool
	once     sync.Once
	marking  *Marking
	err      error
}

// Named sets the functor name used when registering without an explicit name.
func (f *Functor) Named(name string) *Functor {
	f.Name = name
	return f
}

// WithDefault declares a default for the dependency name. A func default is
// injected and called when the dependency is missing.
func (f *Functor) WithDefault(name string, value any) *Functor {
	if f.Defaults == nil {
		f.Defaults = make(map[string]any)
	}
	f.Defaults[name] = value
	return f
}

func (f *Functor) String() string {
	return "Functor(" + f.Kind.String() + " " + f.Name + ")"
}

func declare(kind Kind, fn any, params []string) *Functor {
	if params == nil {
		params = []string{}
	}
	return &Functor{Fn: fn, Kind: kind, Params: params}
}

// Func declares a plain function with its dependency names.
func Func(fn any, params ...string) *Functor {
	return declare(Kind_Function, fn, params)
}

// Arrow declares a function literal with its dependency names.
func Arrow(fn any, params ...string) *Functor {
	return declare(Kind_Arrow, fn, params)
}

// Method declares a method value, or a method expression whose receiver is
// passed as the first call argument.
func Method(fn any, params ...string) *Functor {
	return declare(Kind_Method, fn, params)
}

// Constructor declares a function whose first input is a *T receiver
// allocated by the engine. The call returns its object result if any, else
// its plain result if the receiver was left untouched, else the receiver.
func Constructor(fn any, params ...string) *Functor {
	f := declare(Kind_Function, fn, params)
	f.receiver = true
	return f
}

// Class declares the struct type T. Without params the `inject` field tags
// name the dependencies; with params, exported fields are filled in order.
func Class[T any](params ...string) *Functor {
	f := &Functor{Fn: reflectx.TypeOf[T](), Kind: Kind_Class}
	if len(params) > 0 {
		f.Params = params
	}
	return f
}
