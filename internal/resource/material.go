package resource

import (
	"mini-engine/internal/graphics"
	"mini-engine/internal/graphics/pipeline"

	"github.com/go-gl/mathgl/mgl32"
)

// StateApplier receives the fixed-state mask a material wants for its draws
type StateApplier interface {
	ApplyStateMask(mask pipeline.State)
}

// Uniforms is the per-material shader data
type Uniforms struct {
	Albedo             mgl32.Vec4
	Metallic           float32
	Roughness          float32
	EmissiveFactor     float32
	ClearCoat          float32
	ClearCoatRoughness float32
	TextureTiling      mgl32.Vec2
	TextureOffset      mgl32.Vec2
	Floats             map[string]float32
	Vectors            map[string]mgl32.Vec4
}

// DefaultUniforms returns a white, fully rough, non-metallic surface
func DefaultUniforms() Uniforms {
	return Uniforms{
		Albedo:        mgl32.Vec4{1, 1, 1, 1},
		Roughness:     1,
		TextureTiling: mgl32.Vec2{1, 1},
	}
}

// Material pairs a shader with its uniforms and fixed pipeline flags.
type Material struct {
	path   string
	shader *graphics.Shader

	blendable        bool
	backFaceCulling  bool
	frontFaceCulling bool
	depthTest        bool
	depthWriting     bool
	colorWriting     bool

	Uniforms Uniforms
}

// NewMaterial creates an opaque, back-face culled, depth tested material
func NewMaterial(path string, shader *graphics.Shader) *Material {
	return &Material{
		path:            path,
		shader:          shader,
		backFaceCulling: true,
		depthTest:       true,
		depthWriting:    true,
		colorWriting:    true,
		Uniforms:        DefaultUniforms(),
	}
}

func (m *Material) Path() string              { return m.path }
func (m *Material) Shader() *graphics.Shader  { return m.shader }
func (m *Material) HasShader() bool           { return m != nil && m.shader != nil && m.shader.ID != 0 }
func (m *Material) IsBlendable() bool         { return m.blendable }
func (m *Material) HasBackFaceCulling() bool  { return m.backFaceCulling }
func (m *Material) HasFrontFaceCulling() bool { return m.frontFaceCulling }
func (m *Material) HasDepthTest() bool        { return m.depthTest }
func (m *Material) HasDepthWriting() bool     { return m.depthWriting }
func (m *Material) HasColorWriting() bool     { return m.colorWriting }

func (m *Material) SetShader(s *graphics.Shader) { m.shader = s }
func (m *Material) SetBlendable(b bool)          { m.blendable = b }
func (m *Material) SetBackFaceCulling(b bool)    { m.backFaceCulling = b }
func (m *Material) SetFrontFaceCulling(b bool)   { m.frontFaceCulling = b }
func (m *Material) SetDepthTest(b bool)          { m.depthTest = b }
func (m *Material) SetDepthWriting(b bool)       { m.depthWriting = b }
func (m *Material) SetColorWriting(b bool)       { m.colorWriting = b }

// GenerateStateMask maps the material flags to a pipeline state.
// Back and front culling together select front-and-back.
func (m *Material) GenerateStateMask() pipeline.State {
	var s pipeline.State
	s.SetDepthWrite(m.depthWriting)
	s.SetColorWrite(m.colorWriting)
	s.SetBlend(m.blendable)
	s.SetFaceCull(m.backFaceCulling || m.frontFaceCulling)
	s.SetDepthTest(m.depthTest)
	switch {
	case m.backFaceCulling && m.frontFaceCulling:
		s.SetFrontAndBackCull(true)
	case m.backFaceCulling:
		s.SetBackCull(true)
	case m.frontFaceCulling:
		s.SetFrontCull(true)
	}
	return s
}

// Bind activates the shader, uploads the material uniforms and applies the
// material's state mask. It returns false without touching the device when
// the material has no usable shader.
func (m *Material) Bind(states StateApplier) bool {
	if !m.HasShader() {
		return false
	}
	s := m.shader
	s.Use()
	u := &m.Uniforms
	s.SetVector4("u_Albedo", u.Albedo)
	s.SetFloat("u_Metallic", u.Metallic)
	s.SetFloat("u_Roughness", u.Roughness)
	s.SetFloat("u_EmissiveFactor", u.EmissiveFactor)
	s.SetFloat("u_ClearCoat", u.ClearCoat)
	s.SetFloat("u_ClearCoatRoughness", u.ClearCoatRoughness)
	s.SetVector4("u_TextureTransform", mgl32.Vec4{u.TextureTiling[0], u.TextureTiling[1], u.TextureOffset[0], u.TextureOffset[1]})
	for name, v := range u.Floats {
		s.SetFloat(name, v)
	}
	for name, v := range u.Vectors {
		s.SetVector4(name, v)
	}
	if states != nil {
		states.ApplyStateMask(m.GenerateStateMask())
	}
	return true
}
