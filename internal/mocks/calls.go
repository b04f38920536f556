package mocks

import "sync"

// Calls records the arguments of every call to one mocked method.
type Calls[T any] struct {
	mu   sync.Mutex
	args []T
}

func (c *Calls[T]) record(arg T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.args = append(c.args, arg)
}

// Count returns the number of recorded calls.
func (c *Calls[T]) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.args)
}

// Args returns a copy of the recorded arguments in call order.
func (c *Calls[T]) Args() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.args))
	copy(out, c.args)
	return out
}

// Last returns the most recent arguments, or the zero value if there were none.
func (c *Calls[T]) Last() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if len(c.args) == 0 {
		return zero
	}
	return c.args[len(c.args)-1]
}

// Reset discards all recorded calls.
func (c *Calls[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.args = nil
}
