package dispatcher

// TermSource hands out term indices. Every index in [0, N) is returned by
// Next exactly once.
type TermSource interface {
	Next() (int, bool)
}

// Counter is the monotonic TermSource: it returns 0, 1, ..., N-1.
type Counter struct {
	next  int
	limit int
}

func NewCounter(n int) *Counter {
	return &Counter{limit: max(n, 0)}
}

func (c *Counter) Next() (int, bool) {
	if c.next >= c.limit {
		return 0, false
	}
	t := c.next
	c.next++
	return t, true
}
