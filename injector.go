package piquouze

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dozm/piquouze/errorx"
)

// Injected is an injected functor. Its dependencies are bound; extra arguments
// are passed after them.
type Injected func(extra ...any) (any, error)

// accessor produces the current value of a resolved dependency.
type accessor func() (any, error)

// Injector resolves the dependencies of one injection. Every dependency name
// is resolved once and shared by all functors of the injection.
type Injector struct {
	id         uuid.UUID
	killSwitch *killSwitch
	resolved   map[string]accessor
	values     *valueCache
	logger     *zap.Logger
}

func NewInjector(logger *zap.Logger) *Injector {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	return &Injector{
		id:         id,
		killSwitch: newKillSwitch(),
		resolved:   make(map[string]accessor),
		values:     newValueCache(),
		logger:     logger.With(zap.Stringer("injector", id)),
	}
}

func (in *Injector) ID() uuid.UUID {
	return in.id
}

// Inject resolves the dependencies of target from c.
func (in *Injector) Inject(c *Container, target any) (Injected, error) {
	if c == nil {
		return nil, errorx.NewArgumentNilError("container")
	}
	return in.inject(c, target)
}

// inject resolves names through c, which is also the container policies
// cache under.
func (in *Injector) inject(c *Container, target any) (f Injected, err error) {
	defer func() {
		if p := recover(); p != nil {
			f = nil
			if e, ok := p.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", p)
			}
		}
	}()

	return in.resolveFunctor(c, target)
}

func (in *Injector) resolveFunctor(c *Container, target any) (Injected, error) {
	marking, err := Mark(target)
	if err != nil {
		return nil, err
	}

	dependencies := make([]accessor, len(marking.Params))
	for i, name := range marking.Params {
		dep, err := in.resolve(c, marking, name)
		if err != nil {
			return nil, err
		}
		dependencies[i] = dep
	}

	return injectable(marking, callable(target), dependencies), nil
}

func (in *Injector) resolve(c *Container, marking *Marking, name string) (accessor, error) {
	if dep, ok := in.resolved[name]; ok {
		return dep, nil
	}

	reg, ok := c.reg.lookup(name)
	if !ok {
		return in.resolveDefault(c, marking, name)
	}

	if reg.Kind == Registration_Value {
		value := reg.Value
		dep := func() (any, error) { return value, nil }
		in.resolved[name] = dep
		return dep, nil
	}

	factory, err := in.resolveNested(c, name, reg.Value)
	if err != nil {
		return nil, err
	}

	in.logger.Debug("factory resolved",
		zap.String("name", name),
		zap.String("policy", policyName(reg.Policy)),
		zap.Int("depth", in.killSwitch.Depth()))

	ctx := Context{Container: c, Injector: in, Name: name}
	policy := reg.Policy
	invoke := func() (any, error) {
		v, err := factory()
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %q", name)
		}
		return v, nil
	}
	dep := func() (any, error) {
		return policy.Value(ctx, invoke)
	}
	in.resolved[name] = dep
	return dep, nil
}

func (in *Injector) resolveDefault(c *Container, marking *Marking, name string) (accessor, error) {
	supply, ok := marking.Defaults[name]
	if !ok {
		return nil, &errorx.MissingDependencyError{Name: name}
	}

	value := supply()
	if isCallable(value) {
		factory, err := in.resolveNested(c, name, value)
		if err != nil {
			return nil, err
		}
		if value, err = factory(); err != nil {
			return nil, errors.Wrapf(err, "default of %q", name)
		}
	}

	dep := func() (any, error) { return value, nil }
	in.resolved[name] = dep
	return dep, nil
}

// resolveNested resolves a factory functor under the kill switch.
func (in *Injector) resolveNested(c *Container, name string, functor any) (Injected, error) {
	if err := in.killSwitch.Enter(name); err != nil {
		return nil, err
	}
	defer in.killSwitch.Exit()

	return in.resolveFunctor(c, functor)
}

// isCallable reports whether a default is injected rather than used as is.
// Struct types are values here, construction needs an explicit Class[T].
func isCallable(value any) bool {
	if f, ok := value.(*Functor); ok {
		return f != nil
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// injectable binds dependencies to the functor and dispatches on its kind.
func injectable(marking *Marking, fn reflect.Value, dependencies []accessor) Injected {
	invoke := invocations[marking.Kind]

	return func(extra ...any) (result any, err error) {
		defer func() {
			if p := recover(); p != nil {
				result = nil
				if e, ok := p.(error); ok {
					err = e
				} else {
					err = fmt.Errorf("%v", p)
				}
			}
		}()

		values := make([]any, len(dependencies))
		for i, dep := range dependencies {
			if values[i], err = dep(); err != nil {
				return nil, err
			}
		}

		return invoke(&marking.shape, fn, values, extra)
	}
}
