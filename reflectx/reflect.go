package reflectx

import (
	"reflect"
	"runtime"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// NumFixedIn returns the number of inputs of funcType, not counting a variadic tail.
func NumFixedIn(funcType reflect.Type) int {
	n := funcType.NumIn()
	if funcType.IsVariadic() {
		n--
	}
	return n
}

func IsErrorType(t reflect.Type) bool {
	return t.AssignableTo(errorType)
}

// IsStructPointer reports whether t is *S for some struct type S.
func IsStructPointer(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct
}

func GetFuncName(f any) string {
	rv := reflect.ValueOf(f)
	if rv.Kind() != reflect.Func {
		panic("the argument is not a function")
	}
	fn := runtime.FuncForPC(rv.Pointer())
	if fn == nil {
		return ""
	}
	return fn.Name()
}

// FuncPointer returns the code pointer of a func value. Closures created from
// the same literal share it.
func FuncPointer(f any) uintptr {
	return reflect.ValueOf(f).Pointer()
}

// SplitFuncName splits a runtime symbol such as
// "github.com/a/b.(*T).M-fm" into its package path and the local part "(*T).M-fm".
func SplitFuncName(symbol string) (pkg string, local string) {
	slash := strings.LastIndexByte(symbol, '/')
	dot := strings.IndexByte(symbol[slash+1:], '.')
	if dot < 0 {
		return "", symbol
	}
	dot += slash + 1
	return symbol[:dot], symbol[dot+1:]
}

// StripTypeArgs removes the "[...]" instantiation marker of generic symbols.
func StripTypeArgs(local string) string {
	for {
		open := strings.IndexByte(local, '[')
		if open < 0 {
			return local
		}
		end := strings.IndexByte(local[open:], ']')
		if end < 0 {
			return local[:open]
		}
		local = local[:open] + local[open+end+1:]
	}
}

// IsNil reports whether v is nil or a nil-able value holding nil.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
