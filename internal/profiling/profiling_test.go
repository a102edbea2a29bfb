package profiling

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackAccumulates(t *testing.T) {
	p := New()
	for i := 0; i < 3; i++ {
		stop := p.Track("scene.Update")
		time.Sleep(time.Millisecond)
		stop()
	}
	p.Track("render.ScenePass")()

	assert.Equal(t, 3, p.Count("scene.Update"))
	snap := p.Snapshot()
	assert.GreaterOrEqual(t, snap["scene.Update"], 3*time.Millisecond)
	assert.True(t, strings.HasPrefix(p.TopN(1), "scene.Update:"))
	assert.Len(t, p.Fields(5), 2)

	p.ResetFrame()
	assert.Empty(t, p.Snapshot())
	assert.Equal(t, "", p.TopN(3))
}

func TestNilProfiler(t *testing.T) {
	var p *Profiler
	p.Track("x")()
	p.ResetFrame()
	assert.Empty(t, p.Snapshot())
	assert.Zero(t, p.Count("x"))
	assert.Empty(t, p.TopN(2))
}
