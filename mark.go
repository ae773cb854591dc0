package piquouze

import (
	"reflect"

	"github.com/dozm/piquouze/errorx"
	"github.com/dozm/piquouze/reflectx"
	"github.com/dozm/piquouze/syncx"
	"github.com/dozm/piquouze/util"
)

// markKey identifies a functor declaration. Closures built from the same
// literal share a code pointer, and so share a marking.
type markKey struct {
	code uintptr
	typ  reflect.Type
}

var markings = &syncx.Memo[markKey, *Marking]{}

// Mark returns the marking of target, scanning it on first use. A *Functor
// supplies its own declared metadata.
func Mark(target any) (*Marking, error) {
	if target == nil {
		return nil, errorx.NewArgumentNilError("functor")
	}

	if f, ok := target.(*Functor); ok {
		return f.mark()
	}

	var key markKey
	if t, ok := classType(target); ok {
		key.typ = t
	} else if rv := reflect.ValueOf(target); rv.Kind() == reflect.Func && !rv.IsNil() {
		key = markKey{code: reflectx.FuncPointer(target), typ: rv.Type()}
	} else {
		return Scan(target)
	}

	return markings.LoadOrCompute(key, func() (*Marking, error) {
		return Scan(target)
	})
}

// callable returns the value to invoke for target. Classes have none.
func callable(target any) reflect.Value {
	if f, ok := target.(*Functor); ok {
		target = f.Fn
	}
	if _, ok := classType(target); ok {
		return reflect.Value{}
	}
	return reflect.ValueOf(target)
}

func (f *Functor) mark() (*Marking, error) {
	f.once.Do(func() {
		f.marking, f.err = f.resolveMarking()
	})
	return f.marking, f.err
}

func (f *Functor) resolveMarking() (*Marking, error) {
	if f.Fn == nil {
		return nil, &errorx.ScanError{Functor: f, Reason: "nil Fn"}
	}
	if _, nested := f.Fn.(*Functor); nested {
		return nil, &errorx.ScanError{Functor: f, Reason: "nested Functor"}
	}

	m := &Marking{
		Kind:   f.Kind,
		Name:   f.Name,
		Params: util.CopySlice(f.Params),
	}
	if f.Defaults != nil {
		m.Defaults = make(map[string]func() any, len(f.Defaults))
		for name, value := range f.Defaults {
			m.Defaults[name] = func() any { return value }
		}
	}

	_, isClass := classType(f.Fn)
	if isClass && m.Kind == Kind_Unknown {
		m.Kind = Kind_Class
	}
	// declared params are final, only undeclared ones come from a scan
	needScan := m.Kind == Kind_Unknown || (isClass && m.Params == nil)

	var scanned *Marking
	if needScan {
		var err error
		if scanned, err = Mark(f.Fn); err != nil {
			return nil, err
		}
		if m.Kind == Kind_Unknown {
			m.Kind = scanned.Kind
		}
		if m.Name == "" {
			m.Name = scanned.Name
		}
		if m.Params == nil {
			m.Params = util.CopySlice(scanned.Params)
		}
		if m.Defaults == nil {
			m.Defaults = scanned.Defaults
		}
	} else {
		if m.Name == "" {
			m.Name = declaredName(f.Fn)
		}
		if m.Params == nil {
			m.Params = []string{}
		}
		if m.Defaults == nil {
			m.Defaults = map[string]func() any{}
		}
	}

	sh, err := f.shape(m, scanned)
	if err != nil {
		return nil, err
	}
	m.shape = sh
	return m, nil
}

// shape checks the declared kind and params against Fn.
func (f *Functor) shape(m *Marking, scanned *Marking) (shape, error) {
	if t, ok := classType(f.Fn); ok {
		if m.Kind != Kind_Class {
			return shape{}, &errorx.ScanError{Functor: f, Reason: "struct type declared as " + m.Kind.String()}
		}
		if scanned != nil && f.Params == nil {
			return scanned.shape, nil
		}
		slots := exportedSlots(t)
		if len(m.Params) > len(slots) {
			return shape{}, &errorx.ScanError{Functor: f, Reason: "more dependencies than exported fields"}
		}
		return shape{typ: t, slots: slots}, nil
	}

	rv := reflect.ValueOf(f.Fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return shape{}, &errorx.ScanError{Functor: f, Reason: "Fn is not a function or a struct type"}
	}

	receiver := false
	switch m.Kind {
	case Kind_Class:
		return shape{}, &errorx.ScanError{Functor: f, Reason: "function declared as class"}
	case Kind_Function:
		receiver = f.receiver
	case Kind_Method:
		sym := parseSymbol(f.Fn)
		receiver = sym.kind == Kind_Method && sym.receiver
	}

	return funcShape(f, rv.Type(), m.Kind, receiver, len(m.Params))
}

// declaredName is the name a functor declares for itself without a full scan.
func declaredName(fn any) string {
	if t, ok := classType(fn); ok {
		return t.Name()
	}
	if rv := reflect.ValueOf(fn); rv.Kind() == reflect.Func && !rv.IsNil() {
		return parseSymbol(fn).name
	}
	return ""
}
