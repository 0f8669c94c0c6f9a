package bridge

import (
	"sync"

	"github.com/ytget/fluxnet/internal/model"
)

// recorder is an Applier that keeps every mutation it receives
type recorder struct {
	mu        sync.Mutex
	mutations []Mutation
	active    int
	overlap   bool
}

func (r *recorder) Apply(m Mutation) {
	r.mu.Lock()
	r.active++
	if r.active > 1 {
		r.overlap = true
	}
	r.mutations = append(r.mutations, m)
	r.active--
	r.mu.Unlock()
}

func (r *recorder) values(target model.Target) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, m := range r.mutations {
		if m.Target == target {
			out = append(out, m.Value)
		}
	}
	return out
}

func (r *recorder) all() []Mutation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Mutation(nil), r.mutations...)
}

// posterFunc records posts without a running bridge
type posterFunc func(model.Target, any)

func (f posterFunc) Post(t model.Target, v any) { f(t, v) }

type countingObserver struct {
	mu      sync.Mutex
	applied int
	dropped int
}

func (c *countingObserver) RecordMutation() {
	c.mu.Lock()
	c.applied++
	c.mu.Unlock()
}

func (c *countingObserver) RecordDropped() {
	c.mu.Lock()
	c.dropped++
	c.mu.Unlock()
}

func (c *countingObserver) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied, c.dropped
}
