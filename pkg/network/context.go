package network

import "sync"

// Observer is notified after the active network changes.
type Observer interface {
	NetworkChanged(cfg Config)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(cfg Config)

// NetworkChanged calls f(cfg).
func (f ObserverFunc) NetworkChanged(cfg Config) { f(cfg) }

// Context holds the active network selection for the lifetime of the process.
//
// The RPC client reads Active at the start of every call rather than capturing it
// once, so a switch affects the next request only. Requests already in flight keep
// the endpoint they started with.
type Context struct {
	mu        sync.RWMutex
	active    Config
	observers map[uint64]Observer
	nextID    uint64
}

// NewContext creates a context whose active network is id, or DefaultID when id
// is not registered.
func NewContext(id string) *Context {
	cfg, ok := Lookup(id)
	if !ok {
		cfg = networks[DefaultID]
	}
	return &Context{
		active:    cfg,
		observers: make(map[uint64]Observer),
	}
}

// Active returns the currently selected network.
func (c *Context) Active() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Available returns all networks that can be selected.
func (c *Context) Available() []Config {
	return All()
}

// SetNetworkByID switches the active network. Unknown ids and the already active
// id leave the context untouched and notify nobody. It reports whether a switch
// happened.
func (c *Context) SetNetworkByID(id string) bool {
	cfg, ok := Lookup(id)
	if !ok {
		return false
	}

	c.mu.Lock()
	if c.active.ID == cfg.ID {
		c.mu.Unlock()
		return false
	}
	c.active = cfg
	observers := make([]Observer, 0, len(c.observers))
	for _, o := range c.observers {
		observers = append(observers, o)
	}
	c.mu.Unlock()

	for _, o := range observers {
		o.NetworkChanged(cfg)
	}
	return true
}

// Subscribe registers o for change notifications. The returned function removes
// the subscription and is safe to call more than once.
func (c *Context) Subscribe(o Observer) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = o
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}
