package listing

import "sync"

// Gate decides which dates are due a notification. It remembers the last
// date that was delivered and the dates currently being delivered, so two
// concurrent successes for the same date claim it only once.
type Gate struct {
	mu       sync.Mutex
	last     string
	inflight map[string]struct{}
}

// NewGate creates an empty Gate.
func NewGate() *Gate {
	return &Gate{inflight: make(map[string]struct{})}
}

// Claim reports whether date should be notified and, if so, reserves it.
// Every successful Claim must be followed by Commit or Release.
func (g *Gate) Claim(date string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if date == g.last {
		return false
	}
	if _, busy := g.inflight[date]; busy {
		return false
	}
	g.inflight[date] = struct{}{}
	return true
}

// Commit records a confirmed delivery for date.
func (g *Gate) Commit(date string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, date)
	g.last = date
}

// Release abandons a claim so a later fetch can retry the delivery.
func (g *Gate) Release(date string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, date)
}

// Last returns the most recently delivered date.
func (g *Gate) Last() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
