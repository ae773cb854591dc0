package piquouze

import (
	"reflect"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dozm/piquouze/errorx"
	"github.com/dozm/piquouze/reflectx"
)

// Container options.
type Options struct {
	Logger *zap.Logger
}

// Get default container options.
func DefaultOptions() Options {
	return Options{Logger: zap.NewNop()}
}

// RegistrationKind tells values from factories.
type RegistrationKind byte

const (
	Registration_Value RegistrationKind = iota
	Registration_Factory
)

func (k RegistrationKind) String() string {
	if k == Registration_Factory {
		return "factory"
	}
	return "value"
}

// Registration is one named entry of a container.
type Registration struct {
	Name   string
	Kind   RegistrationKind
	Value  any
	Policy Policy

	marking *Marking
}

// Marking is the functor marking of a factory registration, nil for values.
func (r *Registration) Marking() *Marking {
	return r.marking
}

// Entry is a read-only view of a registration.
type Entry struct {
	Name  string
	Value any
	Kind  RegistrationKind
}

type registry struct {
	entries map[string]*Registration
	order   []string
	parent  *registry
}

func (r *registry) set(reg *Registration) {
	if _, ok := r.entries[reg.Name]; !ok {
		r.order = append(r.order, reg.Name)
	}
	r.entries[reg.Name] = reg
}

func (r *registry) lookup(name string) (*Registration, bool) {
	for cur := r; cur != nil; cur = cur.parent {
		if reg, ok := cur.entries[name]; ok {
			return reg, true
		}
	}
	return nil, false
}

func (r *registry) ownEntries() []Entry {
	entries := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		reg := r.entries[name]
		entries = append(entries, Entry{Name: reg.Name, Value: reg.Value, Kind: reg.Kind})
	}
	return entries
}

func newRegistry(parent *registry) *registry {
	return &registry{
		entries: make(map[string]*Registration),
		parent:  parent,
	}
}

// Container is a hierarchical registry of named values and factories.
// A child sees its ancestors' registrations and may shadow them.
//
// Registration and injection on one container are not synchronized.
type Container struct {
	id     uuid.UUID
	reg    *registry
	values *valueCache
	base   *zap.Logger
	logger *zap.Logger
}

// New creates an empty root container.
func New(configure ...func(*Options)) *Container {
	options := DefaultOptions()
	for _, f := range configure {
		f(&options)
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	return newContainer(newRegistry(nil), options.Logger)
}

func newContainer(reg *registry, logger *zap.Logger) *Container {
	id := uuid.New()
	return &Container{
		id:     id,
		reg:    reg,
		values: newValueCache(),
		base:   logger,
		logger: logger.With(zap.Stringer("container", id)),
	}
}

func (c *Container) ID() uuid.UUID {
	return c.id
}

func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// RegisterValue registers value under name, replacing any local registration.
// Any value, nil included, may be registered.
func (c *Container) RegisterValue(name string, value any) error {
	if name == "" {
		return errorx.NewArgumentError("missing value name")
	}

	c.reg.set(&Registration{Name: name, Kind: Registration_Value, Value: value})
	c.logger.Debug("value registered", zap.String("name", name))
	return nil
}

// RegisterFactory registers functor under name, or under the functor's own
// name when name is empty. A nil policy means DefaultPolicy.
func (c *Container) RegisterFactory(name string, functor any, policy Policy) error {
	if reflectx.IsNil(functor) && !isClassDesignator(functor) {
		return errorx.NewArgumentNilError("functor")
	}
	if !isInjectable(functor) {
		return errorx.NewArgumentError("functor is not a function, a struct type or a Functor")
	}
	if reflectx.IsNil(policy) {
		policy = DefaultPolicy
	}

	marking, err := Mark(functor)
	if err != nil {
		return err
	}

	if name == "" {
		name = marking.Name
	}
	if name == "" {
		return errorx.NewArgumentError("missing functor name")
	}

	c.reg.set(&Registration{
		Name:    name,
		Kind:    Registration_Factory,
		Value:   functor,
		Policy:  policy,
		marking: marking,
	})
	c.logger.Debug("factory registered",
		zap.String("name", name),
		zap.Stringer("kind", marking.Kind),
		zap.Strings("params", marking.Params),
		zap.String("policy", policyName(policy)))
	return nil
}

// Lookup finds the nearest registration of name.
func (c *Container) Lookup(name string) (*Registration, bool) {
	return c.reg.lookup(name)
}

// CreateChild returns a container whose lookups fall back to c.
func (c *Container) CreateChild() *Container {
	child := newContainer(newRegistry(c.reg), c.base)
	c.logger.Debug("child created", zap.Stringer("child", child.id))
	return child
}

// Merge builds a container that looks up names through each container's
// chain in argument order: at every ancestor depth, the earliest argument
// wins. Registries are copied, later registrations on the inputs are not
// seen by the result.
func Merge(containers ...*Container) *Container {
	logger := zap.NewNop()
	levels := make([]*registry, 0, len(containers))
	for _, c := range containers {
		if c == nil {
			continue
		}
		if len(levels) == 0 {
			logger = c.base
		}
		levels = append(levels, c.reg)
	}

	root := newRegistry(nil)
	next := root
	for len(levels) > 0 {
		merged := newRegistry(nil)
		parents := make([]*registry, 0, len(levels))
		for _, level := range levels {
			for _, name := range level.order {
				if _, ok := merged.entries[name]; !ok {
					merged.set(level.entries[name])
				}
			}
			if level.parent != nil {
				parents = append(parents, level.parent)
			}
		}
		next.parent = merged
		next = merged
		levels = parents
	}

	merged := newContainer(root, logger)
	merged.logger.Debug("containers merged", zap.Int("count", len(containers)))
	return merged
}

// Inject resolves the dependencies of target and returns an Injected calling it.
// extra values are registered on a transient child so that c is left
// untouched. Policies then cache under that child, so PerContainer values
// built from extras are not shared between calls.
func (c *Container) Inject(target any, extra map[string]any) (Injected, error) {
	if reflectx.IsNil(target) && !isClassDesignator(target) {
		return nil, errorx.NewArgumentNilError("target")
	}
	if !isInjectable(target) {
		return nil, errorx.NewArgumentError("target is not a function, a struct type or a Functor")
	}

	lookup := c
	if len(extra) > 0 {
		lookup = c.CreateChild()
		names := make([]string, 0, len(extra))
		for name := range extra {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := lookup.RegisterValue(name, extra[name]); err != nil {
				return nil, err
			}
		}
	}

	return NewInjector(c.base).inject(lookup, target)
}

// OwnEntries lists the registrations made on c itself, in insertion order.
func (c *Container) OwnEntries() []Entry {
	return c.reg.ownEntries()
}

// Entries lists the registrations visible from c, nearest first. Shadowed
// ancestor registrations are left out.
func (c *Container) Entries() []Entry {
	seen := make(map[string]bool)
	entries := make([]Entry, 0)
	for reg := c.reg; reg != nil; reg = reg.parent {
		for _, e := range reg.ownEntries() {
			if seen[e.Name] {
				continue
			}
			seen[e.Name] = true
			entries = append(entries, e)
		}
	}
	return entries
}

func isClassDesignator(v any) bool {
	_, ok := classType(v)
	return ok
}

func isInjectable(v any) bool {
	switch v.(type) {
	case *Functor:
		return true
	case reflect.Type:
		return isClassDesignator(v)
	}
	return isClassDesignator(v) || reflect.ValueOf(v).Kind() == reflect.Func
}
