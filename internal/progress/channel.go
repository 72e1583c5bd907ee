package progress

import "sync"

// Channel is an unbounded single-producer single-consumer queue of progress
// values. The producer closes it when the process exits, optionally with the
// error that ended the run.
type Channel struct {
	mu     sync.Mutex
	buf    []float64
	closed bool
	err    error
}

// NewChannel creates an open, empty channel
func NewChannel() *Channel {
	return &Channel{}
}

// Send queues v without blocking. It returns false once the channel is closed.
func (c *Channel) Send(v float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.buf = append(c.buf, v)
	return true
}

// Close marks the end of the stream. Only the first call takes effect.
func (c *Channel) Close(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.err = err
}

// Drain appends every pending value to dst in arrival order. closed is true
// only when the producer closed the channel and nothing is left after this call.
func (c *Channel) Drain(dst []float64) (values []float64, closed bool, err error) {
	c.mu.Lock()
	pending := c.buf
	c.buf = nil
	closed, err = c.closed, c.err
	c.mu.Unlock()

	return append(dst, pending...), closed, err
}

// Len returns the number of values waiting to be drained
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}
