package resilience

import "sync"

// SingleFlight deduplicates concurrent calls for the same key: the first
// caller runs fn, later callers wait and receive the same result.
type SingleFlight struct {
	mu    sync.Mutex
	calls map[string]*inflightCall
}

type inflightCall struct {
	wg  sync.WaitGroup
	val any
	err error
}

// Do returns fn's result for key; shared reports whether the result came
// from another caller's in-flight execution.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (val any, err error, shared bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*inflightCall)
	}

	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := &inflightCall{}
	c.wg.Add(1)
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()
	c.wg.Done()

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()

	return c.val, c.err, false
}
