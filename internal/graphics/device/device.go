// Package device abstracts the GPU calls the engine issues so the renderer
// can run against OpenGL or a headless recorder.
package device

import "github.com/go-gl/mathgl/mgl32"

// Capability is a toggleable fixed-function feature
type Capability int

const (
	CapBlend Capability = iota
	CapCullFace
	CapDepthTest
)

func (c Capability) String() string {
	switch c {
	case CapBlend:
		return "blend"
	case CapCullFace:
		return "cull-face"
	case CapDepthTest:
		return "depth-test"
	}
	return "unknown"
}

// Face selects which polygon faces are culled
type Face int

const (
	FaceBack Face = iota
	FaceFront
	FaceFrontAndBack
)

// Primitive is the topology used by a draw call
type Primitive int

const (
	Triangles Primitive = iota
	Lines
	Points
)

// Handles are opaque GPU object names; zero means none.
type (
	MeshHandle        uint32
	ProgramHandle     uint32
	FramebufferHandle uint32
)

// Device is the GPU surface used by the renderer and resources.
// All methods must be called from the thread owning the context.
type Device interface {
	SetDepthMask(on bool)
	SetColorMask(on bool)
	SetCapability(c Capability, on bool)
	SetCullFace(f Face)
	DepthMask() bool
	ColorMask() bool
	Capability(c Capability) bool
	CullFace() Face

	Viewport(x, y, width, height int32)
	Clear(color mgl32.Vec4, colorBuffer, depthBuffer bool)

	// CreateMesh uploads packed 16-float vertices and 32-bit indices
	CreateMesh(vertices []float32, indices []uint32) MeshHandle
	DeleteMesh(h MeshHandle)
	BindMesh(h MeshHandle)
	DrawElements(p Primitive, count, instances int32)

	CompileProgram(vertexSrc, fragmentSrc string) (ProgramHandle, error)
	DeleteProgram(p ProgramHandle)
	UseProgram(p ProgramHandle)
	UniformLocation(p ProgramHandle, name string) int32
	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)
	Uniform3f(loc int32, v mgl32.Vec3)
	Uniform4f(loc int32, v mgl32.Vec4)
	UniformMatrix4(loc int32, m mgl32.Mat4)

	CreateFramebuffer(width, height int32) (FramebufferHandle, error)
	DeleteFramebuffer(h FramebufferHandle)
	// BindFramebuffer binds h, or the default framebuffer for zero
	BindFramebuffer(h FramebufferHandle)
	// ReadPixels reads an RGBA8 rectangle from the bound framebuffer, rows bottom-up
	ReadPixels(x, y, width, height int32) []byte
}
