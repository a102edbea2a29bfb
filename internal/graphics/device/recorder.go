package device

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Call is one recorded device invocation
type Call struct {
	Op   string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Op, c.Args)
}

// Recorder is a headless Device. It tracks fixed-function state the way a
// GL context would and appends every call to a log.
type Recorder struct {
	calls []Call

	depthMask bool
	colorMask bool
	caps      map[Capability]bool
	cullFace  Face

	nextHandle uint32
	meshes     map[MeshHandle]int
	programs   map[ProgramHandle]map[string]int32
	locNames   map[int32]string
	uniforms   map[int32]any
	bound      MeshHandle
	program    ProgramHandle

	// FailCompile makes CompileProgram return an error
	FailCompile bool
	// Pixels, when set, serves ReadPixels for the given framebuffer coordinate
	Pixels func(x, y int32) [4]byte
}

// NewRecorder creates a recorder in the default context state:
// writes enabled, every capability disabled, back-face cull mode selected.
func NewRecorder() *Recorder {
	return &Recorder{
		depthMask: true,
		colorMask: true,
		caps:      make(map[Capability]bool),
		meshes:    make(map[MeshHandle]int),
		programs:  make(map[ProgramHandle]map[string]int32),
		locNames:  make(map[int32]string),
		uniforms:  make(map[int32]any),
	}
}

func (r *Recorder) record(op string, args ...any) {
	r.calls = append(r.calls, Call{Op: op, Args: args})
}

// Calls returns the recorded log
func (r *Recorder) Calls() []Call {
	return r.calls
}

// Reset clears the log but keeps device state
func (r *Recorder) Reset() {
	r.calls = nil
}

// Count returns how many calls with op were recorded
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Filter returns the recorded calls whose op is one of ops
func (r *Recorder) Filter(ops ...string) []Call {
	var out []Call
	for _, c := range r.calls {
		for _, op := range ops {
			if c.Op == op {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// StateCalls returns the fixed-function state changes in the log
func (r *Recorder) StateCalls() []Call {
	return r.Filter("SetDepthMask", "SetColorMask", "SetCapability", "SetCullFace")
}

// LiveMeshes returns the number of meshes created and not deleted
func (r *Recorder) LiveMeshes() int {
	return len(r.meshes)
}

// Uniform returns the last value uploaded to the named uniform of the program
func (r *Recorder) Uniform(p ProgramHandle, name string) (any, bool) {
	loc, ok := r.programs[p][name]
	if !ok {
		return nil, false
	}
	v, ok := r.uniforms[loc]
	return v, ok
}

func (r *Recorder) SetDepthMask(on bool) {
	r.record("SetDepthMask", on)
	r.depthMask = on
}

func (r *Recorder) SetColorMask(on bool) {
	r.record("SetColorMask", on)
	r.colorMask = on
}

func (r *Recorder) SetCapability(c Capability, on bool) {
	r.record("SetCapability", c, on)
	r.caps[c] = on
}

func (r *Recorder) SetCullFace(f Face) {
	r.record("SetCullFace", f)
	r.cullFace = f
}

func (r *Recorder) DepthMask() bool              { return r.depthMask }
func (r *Recorder) ColorMask() bool              { return r.colorMask }
func (r *Recorder) Capability(c Capability) bool { return r.caps[c] }
func (r *Recorder) CullFace() Face               { return r.cullFace }

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.record("Viewport", x, y, width, height)
}

func (r *Recorder) Clear(color mgl32.Vec4, colorBuffer, depthBuffer bool) {
	r.record("Clear", color, colorBuffer, depthBuffer)
}

func (r *Recorder) handle() uint32 {
	r.nextHandle++
	return r.nextHandle
}

func (r *Recorder) CreateMesh(vertices []float32, indices []uint32) MeshHandle {
	h := MeshHandle(r.handle())
	r.meshes[h] = len(indices)
	r.record("CreateMesh", h, len(vertices), len(indices))
	return h
}

func (r *Recorder) DeleteMesh(h MeshHandle) {
	r.record("DeleteMesh", h)
	delete(r.meshes, h)
}

func (r *Recorder) BindMesh(h MeshHandle) {
	r.record("BindMesh", h)
	r.bound = h
}

// Bound returns the currently bound mesh
func (r *Recorder) Bound() MeshHandle {
	return r.bound
}

func (r *Recorder) DrawElements(p Primitive, count, instances int32) {
	r.record("DrawElements", r.bound, p, count, instances)
}

func (r *Recorder) CompileProgram(vertexSrc, fragmentSrc string) (ProgramHandle, error) {
	if r.FailCompile {
		return 0, fmt.Errorf("failed to compile shader: recorder configured to fail")
	}
	p := ProgramHandle(r.handle())
	r.programs[p] = make(map[string]int32)
	r.record("CompileProgram", p)
	return p, nil
}

func (r *Recorder) DeleteProgram(p ProgramHandle) {
	r.record("DeleteProgram", p)
	delete(r.programs, p)
}

func (r *Recorder) UseProgram(p ProgramHandle) {
	r.record("UseProgram", p)
	r.program = p
}

// Program returns the program most recently passed to UseProgram
func (r *Recorder) Program() ProgramHandle {
	return r.program
}

func (r *Recorder) UniformLocation(p ProgramHandle, name string) int32 {
	locs, ok := r.programs[p]
	if !ok {
		return -1
	}
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := int32(r.handle())
	locs[name] = loc
	r.locNames[loc] = name
	return loc
}

func (r *Recorder) setUniform(loc int32, v any) {
	if loc < 0 {
		return
	}
	r.record("Uniform", r.locNames[loc], v)
	r.uniforms[loc] = v
}

func (r *Recorder) Uniform1i(loc int32, v int32)           { r.setUniform(loc, v) }
func (r *Recorder) Uniform1f(loc int32, v float32)         { r.setUniform(loc, v) }
func (r *Recorder) Uniform3f(loc int32, v mgl32.Vec3)      { r.setUniform(loc, v) }
func (r *Recorder) Uniform4f(loc int32, v mgl32.Vec4)      { r.setUniform(loc, v) }
func (r *Recorder) UniformMatrix4(loc int32, m mgl32.Mat4) { r.setUniform(loc, m) }

func (r *Recorder) CreateFramebuffer(width, height int32) (FramebufferHandle, error) {
	h := FramebufferHandle(r.handle())
	r.record("CreateFramebuffer", h, width, height)
	return h, nil
}

func (r *Recorder) DeleteFramebuffer(h FramebufferHandle) {
	r.record("DeleteFramebuffer", h)
}

func (r *Recorder) BindFramebuffer(h FramebufferHandle) {
	r.record("BindFramebuffer", h)
}

func (r *Recorder) ReadPixels(x, y, width, height int32) []byte {
	r.record("ReadPixels", x, y, width, height)
	out := make([]byte, 0, int(width)*int(height)*4)
	for row := int32(0); row < height; row++ {
		for col := int32(0); col < width; col++ {
			var px [4]byte
			if r.Pixels != nil {
				px = r.Pixels(x+col, y+row)
			}
			out = append(out, px[:]...)
		}
	}
	return out
}
