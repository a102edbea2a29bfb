package resource

import (
	"testing"

	"mini-engine/internal/graphics"
	"mini-engine/internal/graphics/device"
	"mini-engine/internal/graphics/pipeline"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingApplier struct {
	masks []pipeline.State
}

func (r *recordingApplier) ApplyStateMask(m pipeline.State) {
	r.masks = append(r.masks, m)
}

func TestDefaultMaterialMask(t *testing.T) {
	m := NewMaterial("m", nil)
	want := pipeline.DepthWrite | pipeline.ColorWrite | pipeline.FaceCull | pipeline.DepthTest | pipeline.CullBack
	assert.Equal(t, want, m.GenerateStateMask())
}

func TestCullSelection(t *testing.T) {
	cases := []struct {
		back, front bool
		want        pipeline.State
	}{
		{false, false, 0},
		{true, false, pipeline.FaceCull | pipeline.CullBack},
		{false, true, pipeline.FaceCull | pipeline.CullFront},
		{true, true, pipeline.FaceCull | pipeline.CullFrontAndBack},
	}
	for _, c := range cases {
		m := NewMaterial("m", nil)
		m.SetBackFaceCulling(c.back)
		m.SetFrontFaceCulling(c.front)
		got := m.GenerateStateMask() & (pipeline.FaceCull | pipeline.CullModeBits)
		assert.Equal(t, c.want, got, "back=%v front=%v", c.back, c.front)
	}
}

func TestBlendableMask(t *testing.T) {
	m := NewMaterial("glass", nil)
	m.SetBlendable(true)
	m.SetDepthWriting(false)
	mask := m.GenerateStateMask()
	assert.True(t, mask.BlendEnabled())
	assert.False(t, mask.DepthWriteEnabled())
}

func TestBindWithoutShader(t *testing.T) {
	var nilMat *Material
	assert.False(t, nilMat.HasShader())

	ap := &recordingApplier{}
	assert.False(t, NewMaterial("m", nil).Bind(ap))
	assert.Empty(t, ap.masks)
}

func TestBindUploadsUniformsAndState(t *testing.T) {
	rec := device.NewRecorder()
	shader, err := graphics.NewBuiltinShader(rec, graphics.ShaderStandard)
	require.NoError(t, err)

	m := NewMaterial("m", shader)
	m.Uniforms.Albedo = mgl32.Vec4{1, 0, 0, 1}
	m.Uniforms.Floats = map[string]float32{"u_Custom": 3}
	ap := &recordingApplier{}
	require.True(t, m.Bind(ap))

	assert.Equal(t, shader.ID, rec.Program())
	v, ok := rec.Uniform(shader.ID, "u_Albedo")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, v)
	v, ok = rec.Uniform(shader.ID, "u_Custom")
	require.True(t, ok)
	assert.Equal(t, float32(3), v)
	assert.Equal(t, []pipeline.State{m.GenerateStateMask()}, ap.masks)
}

func TestParseMaterialFile(t *testing.T) {
	src := `
shader: standard
blendable: true
frontFaceCulling: true
uniforms:
  albedo: [0.2, 0.4, 0.6]
  roughness: 0.25
  textureTiling: [2, 3]
  vectors:
    u_Tint: [1, 0, 1, 0.5]
`
	mf, err := ParseMaterialFile([]byte(src))
	require.NoError(t, err)

	m := NewMaterial("x", nil)
	mf.Apply(m)
	assert.True(t, m.IsBlendable())
	assert.True(t, m.HasFrontFaceCulling())
	assert.True(t, m.HasBackFaceCulling())
	assert.Equal(t, mgl32.Vec4{0.2, 0.4, 0.6, 1}, m.Uniforms.Albedo)
	assert.Equal(t, float32(0.25), m.Uniforms.Roughness)
	assert.Equal(t, mgl32.Vec2{2, 3}, m.Uniforms.TextureTiling)
	assert.Equal(t, mgl32.Vec4{1, 0, 1, 0.5}, m.Uniforms.Vectors["u_Tint"])
}

func TestParseMaterialFileRejectsMissingShader(t *testing.T) {
	_, err := ParseMaterialFile([]byte("blendable: true\n"))
	assert.Error(t, err)

	_, err = ParseMaterialFile([]byte("shader: [unclosed\n"))
	assert.Error(t, err)
}
