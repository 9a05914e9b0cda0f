// Package reactive provides observable value cells that a render layer can
// subscribe to instead of being re-rendered wholesale.
//
// Cells are not safe for concurrent use; they belong to the UI goroutine.
package reactive

// Cell holds a single value and notifies subscribers when it is set.
type Cell[T any] struct {
	name      string
	value     T
	equal     func(a, b T) bool
	version   uint64
	listeners []func(T)
}

// NewCell creates a cell that notifies on every Set.
func NewCell[T any](name string, initial T) *Cell[T] {
	return &Cell[T]{name: name, value: initial}
}

// NewComparableCell creates a cell that only notifies when the value changes.
func NewComparableCell[T comparable](name string, initial T) *Cell[T] {
	return &Cell[T]{
		name:  name,
		value: initial,
		equal: func(a, b T) bool { return a == b },
	}
}

// Name returns the debug name.
func (c *Cell[T]) Name() string {
	return c.name
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Version increases every time a Set notifies.
func (c *Cell[T]) Version() uint64 {
	return c.version
}

// Set stores v and notifies subscribers. It reports whether subscribers ran.
func (c *Cell[T]) Set(v T) bool {
	if c.equal != nil && c.equal(c.value, v) {
		return false
	}
	c.value = v
	c.version++
	for _, fn := range c.listeners {
		if fn != nil {
			fn(v)
		}
	}
	return true
}

// Subscribe adds a listener and returns its removal func. Calling the removal
// func more than once is harmless.
func (c *Cell[T]) Subscribe(fn func(T)) func() {
	c.listeners = append(c.listeners, fn)
	idx := len(c.listeners) - 1
	return func() {
		// Zero out rather than reorder so other indexes stay valid
		c.listeners[idx] = nil
	}
}

// Subscribers returns the number of live listeners.
func (c *Cell[T]) Subscribers() int {
	n := 0
	for _, fn := range c.listeners {
		if fn != nil {
			n++
		}
	}
	return n
}
