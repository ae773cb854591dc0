package piquouze

import "github.com/dozm/piquouze/syncx"

// CacheLocation tells where a policy keeps the values it caches.
type CacheLocation byte

const (
	CacheLocation_Process CacheLocation = iota
	CacheLocation_Container
	CacheLocation_Injection
	CacheLocation_None
)

func (l CacheLocation) String() string {
	switch l {
	case CacheLocation_Process:
		return "process"
	case CacheLocation_Container:
		return "container"
	case CacheLocation_Injection:
		return "injection"
	case CacheLocation_None:
		return "none"
	default:
		return "unknown"
	}
}

// valueCache holds factory values by dependency name for one keying object.
type valueCache struct {
	memo syncx.Memo[string, any]
}

func (c *valueCache) get(name string, factory func() (any, error)) (any, error) {
	return c.memo.LoadOrCompute(name, factory)
}

func newValueCache() *valueCache {
	return &valueCache{}
}

// processValues backs AlwaysPolicy.
var processValues = newValueCache()
