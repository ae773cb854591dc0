package errorx

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dozm/piquouze/reflectx"
)

type ArgumentNilError struct {
	Name string
}

func (e *ArgumentNilError) Error() string {
	return fmt.Sprintf("ArgumentNilError: %v", e.Name)
}

func NewArgumentNilError(name string) *ArgumentNilError {
	return &ArgumentNilError{name}
}

type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("ArgumentError: %v", e.Message)
}

func NewArgumentError(message string) *ArgumentError {
	return &ArgumentError{message}
}

// CycleError reports a factory depending on itself. Cycle holds the resolution
// stack at detection time followed by the re-entered name.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("CycleError: circular dependencies: %v", strings.Join(e.Cycle, " -> "))
}

// MissingDependencyError reports a name with neither a registration nor a default.
type MissingDependencyError struct {
	Name string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("MissingDependencyError: missing dependency '%v'", e.Name)
}

// ScanError reports a functor whose shape cannot be turned into a marking.
type ScanError struct {
	Functor any
	Reason  string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("ScanError: cannot scan %v: %v", describe(e.Functor), e.Reason)
}

type NotImplementedError struct {
	Name string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("NotImplementedError: %v not implemented", e.Name)
}

type TypeIncompatibilityError struct {
	To   reflect.Type
	From reflect.Type
}

func (e *TypeIncompatibilityError) Error() string {
	return fmt.Sprintf("the value of type '%v' can not assignable to type '%v'", e.From, e.To)
}

func describe(v any) string {
	if v == nil {
		return "<nil>"
	}
	if t, ok := v.(reflect.Type); ok {
		return t.String()
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Func && !rv.IsNil() {
		return fmt.Sprintf("%v (%v)", reflectx.GetFuncName(v), rv.Type())
	}
	return reflect.TypeOf(v).String()
}
