package render

import (
	"fmt"

	"mini-engine/internal/graphics"
	"mini-engine/internal/graphics/renderer"
	"mini-engine/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the number of lights uploaded per frame
const MaxLights = 32

// Context is what a pass needs to render one view of a scene
type Context struct {
	Renderer *renderer.Renderer
	Scene    *scene.Actor
	Camera   *scene.Camera
	Time     float32
}

// Pass renders one stage of a frame
type Pass interface {
	Name() string
	Render(ctx *Context)
}

// frameUniforms uploads the per-frame camera block to shaders, once per
// shader per pass.
type frameUniforms struct {
	view       mgl32.Mat4
	projection mgl32.Mat4
	viewPos    mgl32.Vec3
	time       float32
	lights     []lightInfo
	withLights bool
	done       map[*graphics.Shader]bool
}

type lightInfo struct {
	lightType     int32
	color         mgl32.Vec3
	position      mgl32.Vec3
	direction     mgl32.Vec3
	intensity     float32
	falloffRadius float32
	innerAngle    float32
	outerAngle    float32
}

func newFrameUniforms(ctx *Context) *frameUniforms {
	return &frameUniforms{
		view:       ctx.Camera.View(),
		projection: ctx.Camera.Projection(),
		viewPos:    ctx.Camera.Position(),
		time:       ctx.Time,
		done:       make(map[*graphics.Shader]bool),
	}
}

// collectLights takes the first MaxLights active lights in FastAccess order
func (f *frameUniforms) collectLights(fa *scene.FastAccess) {
	f.withLights = true
	f.lights = f.lights[:0]
	for _, l := range fa.Lights() {
		if len(f.lights) >= MaxLights {
			break
		}
		if !l.IsActive() {
			continue
		}
		f.lights = append(f.lights, lightInfo{
			lightType:     int32(l.Type()),
			color:         l.Color(),
			position:      l.Position(),
			direction:     l.Direction(),
			intensity:     l.Intensity(),
			falloffRadius: l.FalloffRadius(),
			innerAngle:    l.InnerAngle(),
			outerAngle:    l.OuterAngle(),
		})
	}
}

// apply uploads the block to s unless it already has it. s must be in use.
func (f *frameUniforms) apply(s *graphics.Shader) {
	if f.done[s] {
		return
	}
	f.done[s] = true
	s.SetMatrix4("ub_View", f.view)
	s.SetMatrix4("ub_Projection", f.projection)
	s.SetVector3("ub_ViewPos", f.viewPos)
	s.SetFloat("ub_Time", f.time)
	if !f.withLights {
		return
	}
	s.SetInt("u_LightCount", int32(len(f.lights)))
	for i, l := range f.lights {
		prefix := fmt.Sprintf("u_Lights[%d].", i)
		s.SetInt(prefix+"type", l.lightType)
		s.SetVector3(prefix+"color", l.color)
		s.SetVector3(prefix+"position", l.position)
		s.SetVector3(prefix+"direction", l.direction)
		s.SetFloat(prefix+"intensity", l.intensity)
		s.SetFloat(prefix+"falloffRadius", l.falloffRadius)
		s.SetFloat(prefix+"innerAngle", l.innerAngle)
		s.SetFloat(prefix+"outerAngle", l.outerAngle)
	}
}
