package resource

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// MaterialFile is the on-disk material descriptor.
// Shader names a builtin program; Vertex and Fragment name source files instead.
type MaterialFile struct {
	Shader   string `yaml:"shader"`
	Vertex   string `yaml:"vertex,omitempty"`
	Fragment string `yaml:"fragment,omitempty"`

	Blendable        *bool `yaml:"blendable,omitempty"`
	BackFaceCulling  *bool `yaml:"backFaceCulling,omitempty"`
	FrontFaceCulling *bool `yaml:"frontFaceCulling,omitempty"`
	DepthTest        *bool `yaml:"depthTest,omitempty"`
	DepthWriting     *bool `yaml:"depthWriting,omitempty"`
	ColorWriting     *bool `yaml:"colorWriting,omitempty"`

	Uniforms MaterialFileUniforms `yaml:"uniforms"`
}

// MaterialFileUniforms mirrors Uniforms with YAML-friendly types
type MaterialFileUniforms struct {
	Albedo             []float32            `yaml:"albedo,omitempty"`
	Metallic           *float32             `yaml:"metallic,omitempty"`
	Roughness          *float32             `yaml:"roughness,omitempty"`
	EmissiveFactor     *float32             `yaml:"emissiveFactor,omitempty"`
	ClearCoat          *float32             `yaml:"clearCoat,omitempty"`
	ClearCoatRoughness *float32             `yaml:"clearCoatRoughness,omitempty"`
	TextureTiling      []float32            `yaml:"textureTiling,omitempty"`
	TextureOffset      []float32            `yaml:"textureOffset,omitempty"`
	Floats             map[string]float32   `yaml:"floats,omitempty"`
	Vectors            map[string][]float32 `yaml:"vectors,omitempty"`
}

// ParseMaterialFile decodes a YAML material descriptor
func ParseMaterialFile(data []byte) (*MaterialFile, error) {
	var mf MaterialFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("could not unmarshal material yaml: %w", err)
	}
	if mf.Shader == "" && (mf.Vertex == "" || mf.Fragment == "") {
		return nil, fmt.Errorf("material must name a builtin shader or both vertex and fragment sources")
	}
	for name, v := range mf.Uniforms.Vectors {
		if len(v) > 4 {
			return nil, fmt.Errorf("uniform %s has %d components, want at most 4", name, len(v))
		}
	}
	return &mf, nil
}

// Apply copies the descriptor's flags and uniforms onto m; unset fields keep m's values.
func (mf *MaterialFile) Apply(m *Material) {
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&m.blendable, mf.Blendable)
	setBool(&m.backFaceCulling, mf.BackFaceCulling)
	setBool(&m.frontFaceCulling, mf.FrontFaceCulling)
	setBool(&m.depthTest, mf.DepthTest)
	setBool(&m.depthWriting, mf.DepthWriting)
	setBool(&m.colorWriting, mf.ColorWriting)

	setFloat := func(dst *float32, src *float32) {
		if src != nil {
			*dst = *src
		}
	}
	u := &m.Uniforms
	fu := mf.Uniforms
	if len(fu.Albedo) > 0 {
		u.Albedo = vec4(fu.Albedo, 1)
	}
	setFloat(&u.Metallic, fu.Metallic)
	setFloat(&u.Roughness, fu.Roughness)
	setFloat(&u.EmissiveFactor, fu.EmissiveFactor)
	setFloat(&u.ClearCoat, fu.ClearCoat)
	setFloat(&u.ClearCoatRoughness, fu.ClearCoatRoughness)
	if len(fu.TextureTiling) > 0 {
		u.TextureTiling = vec4(fu.TextureTiling, 1).Vec2()
	}
	if len(fu.TextureOffset) > 0 {
		u.TextureOffset = vec4(fu.TextureOffset, 0).Vec2()
	}
	if len(fu.Floats) > 0 {
		u.Floats = make(map[string]float32, len(fu.Floats))
		for k, v := range fu.Floats {
			u.Floats[k] = v
		}
	}
	if len(fu.Vectors) > 0 {
		u.Vectors = make(map[string]mgl32.Vec4, len(fu.Vectors))
		for k, v := range fu.Vectors {
			u.Vectors[k] = vec4(v, 0)
		}
	}
}

// vec4 fills missing trailing components with fill
func vec4(v []float32, fill float32) mgl32.Vec4 {
	out := mgl32.Vec4{fill, fill, fill, fill}
	copy(out[:], v)
	return out
}
