package piquouze

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dozm/piquouze/errorx"
)

type token struct {
	name string
}

func echo(c *Container, name string) (any, error) {
	f, err := c.Inject(Arrow(func(v any) any { return v }, name), nil)
	if err != nil {
		return nil, err
	}
	return f()
}

func TestContainer_ValueIdentity(t *testing.T) {
	unique := &token{name: "unique"}
	values := map[string]any{
		"nil":    nil,
		"false":  false,
		"zero":   0,
		"empty":  "",
		"unique": unique,
		"slice":  []int{1, 2},
	}

	c := New()
	for name, v := range values {
		require.NoError(t, c.RegisterValue(name, v))
	}

	for name, v := range values {
		got, err := echo(c, name)
		require.NoError(t, err)
		require.Equal(t, v, got, name)
	}

	got, err := echo(c, "unique")
	require.NoError(t, err)
	require.Same(t, unique, got)
}

func TestContainer_RegisterValueErrors(t *testing.T) {
	c := New()
	require.ErrorAs(t, c.RegisterValue("", 1), new(*errorx.ArgumentError))
	require.Empty(t, c.OwnEntries())
}

func TestContainer_RegisterFactoryErrors(t *testing.T) {
	c := New()
	require.ErrorAs(t, c.RegisterFactory("a", nil, nil), new(*errorx.ArgumentNilError))
	require.ErrorAs(t, c.RegisterFactory("a", 42, nil), new(*errorx.ArgumentError))
	require.ErrorAs(t, c.RegisterFactory("", func() int { return 1 }, nil), new(*errorx.ArgumentError))
	require.ErrorAs(t, c.RegisterFactory("a", func() (int, int) { return 1, 2 }, nil), new(*errorx.ScanError))
	require.Empty(t, c.OwnEntries())
}

func TestContainer_RegisterFactoryDefaults(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterFactory("", newGreeting, nil))
	require.NoError(t, c.RegisterFactory("", Class[plain]().Named("plainValue"), Never))

	reg, ok := c.Lookup("newGreeting")
	require.True(t, ok)
	require.Equal(t, Registration_Factory, reg.Kind)
	require.Equal(t, DefaultPolicy, reg.Policy)
	require.Equal(t, Kind_Function, reg.Marking().Kind)

	reg, ok = c.Lookup("plainValue")
	require.True(t, ok)
	require.Equal(t, Never, reg.Policy)

	got, err := echo(c, "newGreeting")
	require.NoError(t, err)
	require.Equal(t, "hello", got)
}

func TestContainer_ChildOverride(t *testing.T) {
	parent := New()
	require.NoError(t, parent.RegisterValue("a", 1))
	child := parent.CreateChild()
	require.NoError(t, child.RegisterValue("a", 2))
	grandchild := child.CreateChild()

	v, err := echo(parent, "a")
	require.NoError(t, err)
	require.Equal(t, 1, v)

	v, err = echo(child, "a")
	require.NoError(t, err)
	require.Equal(t, 2, v)

	v, err = echo(grandchild, "a")
	require.NoError(t, err)
	require.Equal(t, 2, v)

	require.Len(t, parent.OwnEntries(), 1)
	require.NotEqual(t, parent.ID(), child.ID())
}

func TestContainer_Merge(t *testing.T) {
	c1 := New()
	require.NoError(t, c1.RegisterValue("x", 1))
	c2 := New()
	require.NoError(t, c2.RegisterValue("x", 2))
	require.NoError(t, c2.RegisterValue("y", 2))

	merged := Merge(c1, c2)

	x, err := echo(merged, "x")
	require.NoError(t, err)
	require.Equal(t, 1, x)

	y, err := echo(merged, "y")
	require.NoError(t, err)
	require.Equal(t, 2, y)

	require.NoError(t, c1.RegisterValue("z", 1))
	_, err = echo(merged, "z")
	require.ErrorAs(t, err, new(*errorx.MissingDependencyError))
	require.Empty(t, merged.OwnEntries())
}

func TestContainer_MergeGenerations(t *testing.T) {
	p1 := New()
	require.NoError(t, p1.RegisterValue("x", "p1"))
	require.NoError(t, p1.RegisterValue("y", "p1"))
	c1 := p1.CreateChild()

	p2 := New()
	require.NoError(t, p2.RegisterValue("y", "p2"))
	c2 := p2.CreateChild()
	require.NoError(t, c2.RegisterValue("x", "c2"))

	merged := Merge(c1, nil, c2)

	x, err := echo(merged, "x")
	require.NoError(t, err)
	require.Equal(t, "c2", x)

	y, err := echo(merged, "y")
	require.NoError(t, err)
	require.Equal(t, "p1", y)

	require.Empty(t, Merge().Entries())
}

func TestContainer_Entries(t *testing.T) {
	parent := New()
	require.NoError(t, parent.RegisterValue("a", 1))
	require.NoError(t, parent.RegisterValue("b", 1))
	child := parent.CreateChild()
	require.NoError(t, child.RegisterValue("c", 2))
	require.NoError(t, child.RegisterValue("b", 2))
	require.NoError(t, child.RegisterValue("c", 3))

	require.Equal(t, []Entry{
		{Name: "c", Value: 3, Kind: Registration_Value},
		{Name: "b", Value: 2, Kind: Registration_Value},
	}, child.OwnEntries())

	require.Equal(t, []Entry{
		{Name: "c", Value: 3, Kind: Registration_Value},
		{Name: "b", Value: 2, Kind: Registration_Value},
		{Name: "a", Value: 1, Kind: Registration_Value},
	}, child.Entries())
}

func TestContainer_InjectExtras(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterValue("greeting", "hello"))

	f, err := c.Inject(Arrow(func(greeting, name string) string {
		return greeting + " " + name
	}, "greeting", "name"), map[string]any{"name": "world"})
	require.NoError(t, err)

	v, err := Invoke[string](f)
	require.NoError(t, err)
	require.Equal(t, "hello world", v)

	_, ok := c.Lookup("name")
	require.False(t, ok)
}

func TestContainer_InjectErrors(t *testing.T) {
	c := New()
	_, err := c.Inject(nil, nil)
	require.ErrorAs(t, err, new(*errorx.ArgumentNilError))

	_, err = c.Inject("target", nil)
	require.ErrorAs(t, err, new(*errorx.ArgumentError))
}

func TestContainer_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := New(func(o *Options) {
		o.Logger = zap.New(core)
	})

	require.NoError(t, c.RegisterValue("a", 1))
	require.NoError(t, c.RegisterFactory("b", Arrow(func(a int) int { return a + 1 }, "a"), nil))
	child := c.CreateChild()

	v, err := Get[int](child, "b")
	require.NoError(t, err)
	require.Equal(t, 2, v)

	require.Equal(t, 1, logs.FilterMessage("value registered").Len())
	require.Equal(t, 1, logs.FilterMessage("child created").Len())

	registered := logs.FilterMessage("factory registered").All()
	require.Len(t, registered, 1)
	require.Equal(t, "per-injection", registered[0].ContextMap()["policy"])
	require.Equal(t, c.ID().String(), registered[0].ContextMap()["container"])

	require.Equal(t, 1, logs.FilterMessage("factory resolved").Len())
}
