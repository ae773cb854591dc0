package piquouze

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dozm/piquouze/errorx"
	"github.com/dozm/piquouze/reflectx"
)

var durationType = reflectx.TypeOf[time.Duration]()

// Scan derives a marking from the declaration of target: a func value, a
// struct type given as reflect.Type, or a typed nil struct pointer.
//
// Parameter names of funcs are not recoverable, so scanned funcs have no
// dependencies and take all their inputs as extra arguments. Structs name
// their dependencies with `inject` field tags.
func Scan(target any) (*Marking, error) {
	if target == nil {
		return nil, &errorx.ScanError{Functor: target, Reason: "nil functor"}
	}

	if t, ok := classType(target); ok {
		return scanClass(target, t)
	}

	if rv := reflect.ValueOf(target); rv.Kind() == reflect.Func {
		return scanFunc(target, rv)
	}

	return nil, &errorx.ScanError{Functor: target, Reason: "not a function or a struct type"}
}

// classType returns the struct type designated by target, if any.
func classType(target any) (reflect.Type, bool) {
	var t reflect.Type
	switch v := target.(type) {
	case reflect.Type:
		t = v
	default:
		rv := reflect.ValueOf(target)
		if rv.Kind() != reflect.Pointer || !rv.IsNil() {
			return nil, false
		}
		t = rv.Type()
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	return t, true
}

func scanFunc(target any, rv reflect.Value) (*Marking, error) {
	if rv.IsNil() {
		return nil, &errorx.ScanError{Functor: target, Reason: "nil function"}
	}

	sym := parseSymbol(target)
	if sym.opaque {
		return nil, &errorx.ScanError{Functor: target, Reason: "opaque function, declare it with a Functor"}
	}

	sh, err := funcShape(target, rv.Type(), sym.kind, sym.receiver, 0)
	if err != nil {
		return nil, err
	}

	return &Marking{
		Kind:     sym.kind,
		Name:     sym.name,
		Params:   []string{},
		Defaults: map[string]func() any{},
		shape:    sh,
	}, nil
}

type symbol struct {
	kind     Kind
	name     string
	receiver bool
	opaque   bool
}

// parseSymbol classifies a func value by its runtime symbol:
//
//	pkg.NewServer        function
//	pkg.Test.func1       arrow (closure literal)
//	pkg.(*T).Serve-fm    method value, receiver bound
//	pkg.(*T).Serve       method expression, receiver passed first
func parseSymbol(fn any) symbol {
	full := reflectx.GetFuncName(fn)
	if full == "" || strings.HasPrefix(full, "reflect.") {
		return symbol{opaque: true}
	}

	_, local := reflectx.SplitFuncName(full)
	local = reflectx.StripTypeArgs(local)

	if bound, ok := strings.CutSuffix(local, "-fm"); ok {
		return symbol{kind: Kind_Method, name: lastSegment(bound)}
	}

	segments := strings.Split(local, ".")
	for _, s := range segments[1:] {
		if isClosureSegment(s) {
			return symbol{kind: Kind_Arrow}
		}
	}
	if isClosureSegment(segments[0]) {
		return symbol{kind: Kind_Arrow}
	}

	if len(segments) > 1 {
		return symbol{kind: Kind_Method, name: lastSegment(local), receiver: true}
	}

	return symbol{kind: Kind_Function, name: local}
}

func isClosureSegment(s string) bool {
	digits, ok := strings.CutPrefix(s, "func")
	if !ok || digits == "" {
		return false
	}
	_, err := strconv.Atoi(digits)
	return err == nil
}

func lastSegment(s string) string {
	return s[strings.LastIndexByte(s, '.')+1:]
}

// funcShape checks that a func of type ft can be invoked as kind with
// nparams leading dependencies.
func funcShape(target any, ft reflect.Type, kind Kind, receiver bool, nparams int) (shape, error) {
	fail := func(format string, args ...any) (shape, error) {
		return shape{}, &errorx.ScanError{Functor: target, Reason: fmt.Sprintf(format, args...)}
	}

	switch ft.NumOut() {
	case 0, 1:
	case 2:
		if !reflectx.IsErrorType(ft.Out(1)) {
			return fail("second result must be an error, got %v", ft.Out(1))
		}
	default:
		return fail("too many results (%d)", ft.NumOut())
	}

	available := reflectx.NumFixedIn(ft)
	if receiver {
		if available == 0 {
			return fail("missing receiver parameter")
		}
		if kind == Kind_Function && !reflectx.IsStructPointer(ft.In(0)) {
			return fail("constructor receiver must be a struct pointer, got %v", ft.In(0))
		}
		available--
	}

	if nparams > available {
		return fail("%d dependencies declared for %d parameters", nparams, available)
	}

	return shape{typ: ft, receiver: receiver}, nil
}

func scanClass(target any, t reflect.Type) (*Marking, error) {
	fail := func(format string, args ...any) (*Marking, error) {
		return nil, &errorx.ScanError{Functor: target, Reason: fmt.Sprintf(format, args...)}
	}

	params := make([]string, 0)
	defaults := make(map[string]func() any)
	tagged := make([]int, 0)
	extra := make([]int, 0)
	seen := make(map[string]bool)
	hasBase := false

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup("inject")
		if tag == "-" {
			continue
		}

		if !ok {
			if f.Anonymous {
				hasBase = hasBase || isBaseClass(f.Type)
			} else if f.IsExported() {
				extra = append(extra, i)
			}
			continue
		}

		if !f.IsExported() {
			return fail("tagged field %v is not exported", f.Name)
		}
		name := tag
		if name == "" {
			name = f.Name
		}
		if seen[name] {
			return fail("dependency %q tagged twice", name)
		}
		seen[name] = true

		if literal, ok := f.Tag.Lookup("default"); ok {
			parse, err := literalParser(f.Type)
			if err != nil {
				return fail("field %v: %v", f.Name, err)
			}
			defaults[name] = func() any {
				v, err := parse(literal)
				if err != nil {
					panic(&errorx.ScanError{Functor: target, Reason: fmt.Sprintf("default of %v: %v", f.Name, err)})
				}
				return v
			}
		}

		params = append(params, name)
		tagged = append(tagged, i)
	}

	if len(params) == 0 && hasBase {
		return fail("embedded struct without tagged fields")
	}

	return &Marking{
		Kind:     Kind_Class,
		Name:     t.Name(),
		Params:   params,
		Defaults: defaults,
		shape:    shape{typ: t, slots: append(tagged, extra...)},
	}, nil
}

// isBaseClass reports whether an embedded field carries state a constructor
// would have to fill: a struct with exported fields. Embedded helpers such as
// sync.Mutex do not count.
func isBaseClass(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

// exportedSlots lists settable fields of t in declaration order.
func exportedSlots(t reflect.Type) []int {
	slots := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.IsExported() && !f.Anonymous {
			slots = append(slots, i)
		}
	}
	return slots
}

// literalParser returns a parser for `default` tag literals of type t.
func literalParser(t reflect.Type) (func(string) (any, error), error) {
	convert := func(v any, err error) (any, error) {
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(v).Convert(t).Interface(), nil
	}

	if t == durationType {
		return func(s string) (any, error) { return convert(time.ParseDuration(s)) }, nil
	}

	switch t.Kind() {
	case reflect.String:
		return func(s string) (any, error) { return convert(s, nil) }, nil
	case reflect.Bool:
		return func(s string) (any, error) { return convert(strconv.ParseBool(s)) }, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(s string) (any, error) { return convert(strconv.ParseInt(s, 0, t.Bits())) }, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(s string) (any, error) { return convert(strconv.ParseUint(s, 0, t.Bits())) }, nil
	case reflect.Float32, reflect.Float64:
		return func(s string) (any, error) { return convert(strconv.ParseFloat(s, t.Bits())) }, nil
	}

	return nil, fmt.Errorf("unsupported default type %v", t)
}
