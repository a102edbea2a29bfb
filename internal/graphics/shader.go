package graphics

import (
	"embed"
	"fmt"
	"os"

	"mini-engine/internal/graphics/device"

	"github.com/go-gl/mathgl/mgl32"
)

//go:embed shaders/*.glsl
var builtinShaders embed.FS

// Builtin shader names
const (
	ShaderStandard = "standard"
	ShaderUnlit    = "unlit"
	ShaderID       = "id"
	ShaderSky      = "sky"
)

// Shader represents a linked GPU program with cached uniform locations
type Shader struct {
	dev       device.Device
	ID        device.ProgramHandle
	Name      string
	locations map[string]int32
}

// NewShader compiles a program from vertex and fragment sources
func NewShader(dev device.Device, name, vertexSrc, fragmentSrc string) (*Shader, error) {
	id, err := dev.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	return &Shader{dev: dev, ID: id, Name: name, locations: make(map[string]int32)}, nil
}

// NewShaderFromFiles creates a shader program from vertex and fragment shader source files
func NewShaderFromFiles(dev device.Device, vertexPath, fragmentPath string) (*Shader, error) {
	vertexSource, err := os.ReadFile(vertexPath)
	if err != nil {
		return nil, fmt.Errorf("could not read vertex shader file: %w", err)
	}

	fragmentSource, err := os.ReadFile(fragmentPath)
	if err != nil {
		return nil, fmt.Errorf("could not read fragment shader file: %w", err)
	}

	return NewShader(dev, vertexPath, string(vertexSource), string(fragmentSource))
}

// NewBuiltinShader compiles one of the embedded programs
func NewBuiltinShader(dev device.Device, name string) (*Shader, error) {
	vs, err := builtinShaders.ReadFile("shaders/" + name + ".vert.glsl")
	if err != nil {
		return nil, fmt.Errorf("unknown builtin shader %q", name)
	}
	fs, err := builtinShaders.ReadFile("shaders/" + name + ".frag.glsl")
	if err != nil {
		return nil, fmt.Errorf("unknown builtin shader %q", name)
	}
	return NewShader(dev, name, string(vs), string(fs))
}

// Use activates the shader program
func (s *Shader) Use() {
	s.dev.UseProgram(s.ID)
}

func (s *Shader) location(name string) int32 {
	if loc, ok := s.locations[name]; ok {
		return loc
	}
	loc := s.dev.UniformLocation(s.ID, name)
	s.locations[name] = loc
	return loc
}

// SetBool sets a boolean uniform
func (s *Shader) SetBool(name string, value bool) {
	var intValue int32
	if value {
		intValue = 1
	}
	s.dev.Uniform1i(s.location(name), intValue)
}

// SetInt sets an integer uniform
func (s *Shader) SetInt(name string, value int32) {
	s.dev.Uniform1i(s.location(name), value)
}

// SetFloat sets a float uniform
func (s *Shader) SetFloat(name string, value float32) {
	s.dev.Uniform1f(s.location(name), value)
}

// SetVector3 sets a vector3 uniform
func (s *Shader) SetVector3(name string, v mgl32.Vec3) {
	s.dev.Uniform3f(s.location(name), v)
}

// SetVector4 sets a vector4 uniform
func (s *Shader) SetVector4(name string, v mgl32.Vec4) {
	s.dev.Uniform4f(s.location(name), v)
}

// SetMatrix4 sets a 4x4 matrix uniform
func (s *Shader) SetMatrix4(name string, m mgl32.Mat4) {
	s.dev.UniformMatrix4(s.location(name), m)
}

// Dispose deletes the program
func (s *Shader) Dispose() {
	if s.ID != 0 {
		s.dev.DeleteProgram(s.ID)
		s.ID = 0
	}
}
