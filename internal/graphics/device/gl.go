package device

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type glMesh struct {
	vao, vbo, ebo uint32
}

type glFramebuffer struct {
	fbo, color, depth uint32
}

// GLDevice implements Device with OpenGL 4.1 core. gl.Init must have run.
type GLDevice struct {
	meshes       map[MeshHandle]glMesh
	framebuffers map[FramebufferHandle]glFramebuffer
}

// NewGLDevice wraps the current OpenGL context
func NewGLDevice() *GLDevice {
	gl.FrontFace(gl.CCW)
	return &GLDevice{
		meshes:       make(map[MeshHandle]glMesh),
		framebuffers: make(map[FramebufferHandle]glFramebuffer),
	}
}

func glCap(c Capability) uint32 {
	switch c {
	case CapBlend:
		return gl.BLEND
	case CapCullFace:
		return gl.CULL_FACE
	default:
		return gl.DEPTH_TEST
	}
}

func (d *GLDevice) SetDepthMask(on bool) { gl.DepthMask(on) }

func (d *GLDevice) SetColorMask(on bool) { gl.ColorMask(on, on, on, on) }

func (d *GLDevice) SetCapability(c Capability, on bool) {
	if on {
		gl.Enable(glCap(c))
		if c == CapBlend {
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		}
		return
	}
	gl.Disable(glCap(c))
}

func (d *GLDevice) SetCullFace(f Face) {
	switch f {
	case FaceBack:
		gl.CullFace(gl.BACK)
	case FaceFront:
		gl.CullFace(gl.FRONT)
	default:
		gl.CullFace(gl.FRONT_AND_BACK)
	}
}

func (d *GLDevice) DepthMask() bool {
	var v bool
	gl.GetBooleanv(gl.DEPTH_WRITEMASK, &v)
	return v
}

func (d *GLDevice) ColorMask() bool {
	var v [4]bool
	gl.GetBooleanv(gl.COLOR_WRITEMASK, &v[0])
	return v[0]
}

func (d *GLDevice) Capability(c Capability) bool {
	return gl.IsEnabled(glCap(c))
}

func (d *GLDevice) CullFace() Face {
	var mode int32
	gl.GetIntegerv(gl.CULL_FACE_MODE, &mode)
	switch uint32(mode) {
	case gl.FRONT:
		return FaceFront
	case gl.FRONT_AND_BACK:
		return FaceFrontAndBack
	}
	return FaceBack
}

func (d *GLDevice) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *GLDevice) Clear(color mgl32.Vec4, colorBuffer, depthBuffer bool) {
	var mask uint32
	if colorBuffer {
		gl.ClearColor(color[0], color[1], color[2], color[3])
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depthBuffer {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

// vertex attribute layout: position, uv0, uv1, normal, tangent, bitangent
var attribSizes = [...]int32{3, 2, 2, 3, 3, 3}

const vertexStride = 16 * 4

func (d *GLDevice) CreateMesh(vertices []float32, indices []uint32) MeshHandle {
	var m glMesh
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	if len(vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	}

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	if len(indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	}

	var offset uintptr
	for i, size := range attribSizes {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointerWithOffset(uint32(i), size, gl.FLOAT, false, vertexStride, offset)
		offset += uintptr(size) * 4
	}
	gl.BindVertexArray(0)

	h := MeshHandle(m.vao)
	d.meshes[h] = m
	return h
}

func (d *GLDevice) DeleteMesh(h MeshHandle) {
	m, ok := d.meshes[h]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteVertexArrays(1, &m.vao)
	delete(d.meshes, h)
}

func (d *GLDevice) BindMesh(h MeshHandle) {
	gl.BindVertexArray(uint32(h))
}

func glPrimitive(p Primitive) uint32 {
	switch p {
	case Lines:
		return gl.LINES
	case Points:
		return gl.POINTS
	}
	return gl.TRIANGLES
}

func (d *GLDevice) DrawElements(p Primitive, count, instances int32) {
	if instances > 1 {
		gl.DrawElementsInstanced(glPrimitive(p), count, gl.UNSIGNED_INT, nil, instances)
		return
	}
	gl.DrawElements(glPrimitive(p), count, gl.UNSIGNED_INT, nil)
}

func (d *GLDevice) CompileProgram(vertexSrc, fragmentSrc string) (ProgramHandle, error) {
	vs, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	return ProgramHandle(program), nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("failed to compile shader: %v", log)
	}
	return shader, nil
}

func (d *GLDevice) DeleteProgram(p ProgramHandle) { gl.DeleteProgram(uint32(p)) }

func (d *GLDevice) UseProgram(p ProgramHandle) { gl.UseProgram(uint32(p)) }

func (d *GLDevice) UniformLocation(p ProgramHandle, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

func (d *GLDevice) Uniform1i(loc int32, v int32) { gl.Uniform1i(loc, v) }

func (d *GLDevice) Uniform1f(loc int32, v float32) { gl.Uniform1f(loc, v) }

func (d *GLDevice) Uniform3f(loc int32, v mgl32.Vec3) { gl.Uniform3f(loc, v[0], v[1], v[2]) }

func (d *GLDevice) Uniform4f(loc int32, v mgl32.Vec4) { gl.Uniform4f(loc, v[0], v[1], v[2], v[3]) }

func (d *GLDevice) UniformMatrix4(loc int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func (d *GLDevice) CreateFramebuffer(width, height int32) (FramebufferHandle, error) {
	var fb glFramebuffer
	gl.GenFramebuffers(1, &fb.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)

	gl.GenTextures(1, &fb.color)
	gl.BindTexture(gl.TEXTURE_2D, fb.color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.color, 0)

	gl.GenRenderbuffers(1, &fb.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, width, height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, fb.depth)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		d.release(fb)
		return 0, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	h := FramebufferHandle(fb.fbo)
	d.framebuffers[h] = fb
	return h, nil
}

func (d *GLDevice) release(fb glFramebuffer) {
	gl.DeleteRenderbuffers(1, &fb.depth)
	gl.DeleteTextures(1, &fb.color)
	gl.DeleteFramebuffers(1, &fb.fbo)
}

func (d *GLDevice) DeleteFramebuffer(h FramebufferHandle) {
	fb, ok := d.framebuffers[h]
	if !ok {
		return
	}
	d.release(fb)
	delete(d.framebuffers, h)
}

func (d *GLDevice) BindFramebuffer(h FramebufferHandle) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(h))
}

func (d *GLDevice) ReadPixels(x, y, width, height int32) []byte {
	out := make([]byte, int(width)*int(height)*4)
	if len(out) == 0 {
		return out
	}
	gl.ReadPixels(x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(out))
	return out
}

// Dispose deletes every mesh and framebuffer still owned by the device
func (d *GLDevice) Dispose() {
	for h := range d.meshes {
		d.DeleteMesh(h)
	}
	for h := range d.framebuffers {
		d.DeleteFramebuffer(h)
	}
}
