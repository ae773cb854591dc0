package piquouze

import (
	"github.com/dozm/piquouze/errorx"
)

// Context describes the resolution a policy is asked to serve.
type Context struct {
	Container *Container
	Injector  *Injector
	Name      string
}

// Policy decides whether a factory value is produced anew or taken from a cache.
type Policy interface {
	// Value returns the (possibly cached) value for ctx.Name. factory
	// produces a fresh value.
	Value(ctx Context, factory func() (any, error)) (any, error)
}

// Located is implemented by policies that report their cache location.
type Located interface {
	Location() CacheLocation
}

// BasePolicy can be embedded by policies; its Value must be overridden.
type BasePolicy struct{}

func (BasePolicy) Value(Context, func() (any, error)) (any, error) {
	return nil, &errorx.NotImplementedError{Name: "Value"}
}

// NeverPolicy calls the factory on every resolution.
type NeverPolicy struct{}

func (NeverPolicy) Value(_ Context, factory func() (any, error)) (any, error) {
	return factory()
}

func (NeverPolicy) Location() CacheLocation { return CacheLocation_None }

// PerInjectionPolicy caches one value per name for each injection.
type PerInjectionPolicy struct{}

func (PerInjectionPolicy) Value(ctx Context, factory func() (any, error)) (any, error) {
	if ctx.Injector == nil {
		return nil, errorx.NewArgumentNilError("ctx.Injector")
	}
	return ctx.Injector.values.get(ctx.Name, factory)
}

func (PerInjectionPolicy) Location() CacheLocation { return CacheLocation_Injection }

// PerContainerPolicy caches one value per name for each container. Children
// and siblings keep their own values.
type PerContainerPolicy struct{}

func (PerContainerPolicy) Value(ctx Context, factory func() (any, error)) (any, error) {
	if ctx.Container == nil {
		return nil, errorx.NewArgumentNilError("ctx.Container")
	}
	return ctx.Container.values.get(ctx.Name, factory)
}

func (PerContainerPolicy) Location() CacheLocation { return CacheLocation_Container }

// AlwaysPolicy caches one value per name for the whole process, whichever
// container or injection first produced it.
type AlwaysPolicy struct{}

func (AlwaysPolicy) Value(ctx Context, factory func() (any, error)) (any, error) {
	return processValues.get(ctx.Name, factory)
}

func (AlwaysPolicy) Location() CacheLocation { return CacheLocation_Process }

var (
	Always       Policy = AlwaysPolicy{}
	Never        Policy = NeverPolicy{}
	PerContainer Policy = PerContainerPolicy{}
	PerInjection Policy = PerInjectionPolicy{}
)

// DefaultPolicy is used by RegisterFactory when no policy is given.
var DefaultPolicy = PerInjection

// policyName is used by logs and dumps.
func policyName(p Policy) string {
	switch p.(type) {
	case AlwaysPolicy, *AlwaysPolicy:
		return "always"
	case NeverPolicy, *NeverPolicy:
		return "never"
	case PerContainerPolicy, *PerContainerPolicy:
		return "per-container"
	case PerInjectionPolicy, *PerInjectionPolicy:
		return "per-injection"
	case nil:
		return ""
	}
	if l, ok := p.(Located); ok {
		return "custom(" + l.Location().String() + ")"
	}
	return "custom"
}
