package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Profiler accumulates CPU time per named scope over one frame.
// A nil *Profiler is valid and records nothing.
type Profiler struct {
	mu     sync.Mutex
	totals map[string]time.Duration
	counts map[string]int
}

func New() *Profiler {
	return &Profiler{
		totals: make(map[string]time.Duration),
		counts: make(map[string]int),
	}
}

// Track returns a stop function that records the elapsed time under name.
// Usage: defer prof.Track("render.ScenePass")()
func (p *Profiler) Track(name string) func() {
	if p == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		p.mu.Lock()
		p.totals[name] += d
		p.counts[name]++
		p.mu.Unlock()
	}
}

// ResetFrame clears the totals. Call at the start of each frame.
func (p *Profiler) ResetFrame() {
	if p == nil {
		return
	}
	p.mu.Lock()
	clear(p.totals)
	clear(p.counts)
	p.mu.Unlock()
}

// Snapshot returns a copy of the current totals
func (p *Profiler) Snapshot() map[string]time.Duration {
	out := make(map[string]time.Duration)
	if p == nil {
		return out
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, v := range p.totals {
		out[k] = v
	}
	return out
}

// Count returns how many times name was tracked this frame
func (p *Profiler) Count(name string) int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[name]
}

type entry struct {
	name string
	dur  time.Duration
}

func (p *Profiler) top(n int) []entry {
	ss := p.Snapshot()
	list := make([]entry, 0, len(ss))
	for k, v := range ss {
		list = append(list, entry{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur != list[j].dur {
			return list[i].dur > list[j].dur
		}
		return list[i].name < list[j].name
	})
	if n < len(list) {
		list = list[:n]
	}
	return list
}

// TopN formats the n most expensive scopes of the frame.
// Example: "render.ScenePass:4.2ms, scene.Update:0.3ms"
func (p *Profiler) TopN(n int) string {
	list := p.top(n)
	parts := make([]string, 0, len(list))
	for _, e := range list {
		parts = append(parts, fmt.Sprintf("%s:%.1fms", e.name, float64(e.dur.Microseconds())/1000))
	}
	return strings.Join(parts, ", ")
}

// Fields returns the n most expensive scopes as log fields
func (p *Profiler) Fields(n int) []zap.Field {
	list := p.top(n)
	fields := make([]zap.Field, 0, len(list))
	for _, e := range list {
		fields = append(fields, zap.Duration(e.name, e.dur))
	}
	return fields
}
