package render

import (
	"bytes"
	"testing"

	"mini-engine/internal/asset"
	"mini-engine/internal/geom"
	"mini-engine/internal/graphics"
	"mini-engine/internal/graphics/device"
	"mini-engine/internal/graphics/pipeline"
	"mini-engine/internal/graphics/renderer"
	"mini-engine/internal/profiling"
	"mini-engine/internal/resource"
	"mini-engine/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/bmp"
)

type fixture struct {
	rec      *device.Recorder
	renderer *renderer.Renderer
	shader   *graphics.Shader
	cube     *resource.GpuModel
	root     *scene.Actor
	camera   *scene.Camera
	pass     *ScenePass
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := device.NewRecorder()
	r := renderer.NewRenderer(rec, nil)
	r.SetViewport(800, 600)
	shader, err := graphics.NewBuiltinShader(rec, graphics.ShaderStandard)
	require.NoError(t, err)

	root := scene.NewScene("Root", nil)
	camActor := root.CreateActor("Camera", "")
	camActor.Transform().SetPosition(mgl32.Vec3{0, 0, 10})
	cam := scene.AddComponent(camActor, scene.NewCamera())

	return &fixture{
		rec:      rec,
		renderer: r,
		shader:   shader,
		cube:     resource.NewGpuModel(rec, "cube", asset.CubeModel(1, "body")),
		root:     root,
		camera:   cam,
		pass:     NewScenePass(resource.NewMaterial("default", shader), nil),
	}
}

func (f *fixture) context() *Context {
	f.camera.UpdateMatrices(f.renderer.Viewport())
	return &Context{Renderer: f.renderer, Scene: f.root, Camera: f.camera}
}

func (f *fixture) addCube(name string, pos mgl32.Vec3, m *resource.Material) *scene.ModelRenderer {
	a := f.root.CreateActor(name, "")
	a.Transform().SetPosition(pos)
	mr := scene.AddComponent(a, scene.NewModelRenderer())
	mr.SetModel(f.cube)
	mr.SetMaterial(0, m)
	return mr
}

func TestEndToEndCubeIsCulledOutsideFrustum(t *testing.T) {
	f := newFixture(t)
	f.addCube("A", mgl32.Vec3{}, nil)

	f.pass.Collect(f.context())
	require.Len(t, f.pass.Opaque(), 1)
	assert.Empty(t, f.pass.Transparent())
	assert.Greater(t, f.pass.Opaque()[0].Distance, float32(0))

	// behind the camera
	f.camera.Owner().Transform().SetPosition(mgl32.Vec3{0, 0, -10})
	f.pass.Collect(f.context())
	assert.Empty(t, f.pass.Opaque())
	assert.Empty(t, f.pass.Transparent())
}

func TestDrawOrder(t *testing.T) {
	f := newFixture(t)
	opaque := resource.NewMaterial("opaque", f.shader)
	glass := resource.NewMaterial("glass", f.shader)
	glass.SetBlendable(true)

	for _, z := range []float32{-5, 3, -30, 0, -12} {
		f.addCube("o", mgl32.Vec3{0, 0, z}, opaque)
	}
	for _, z := range []float32{-8, 1, -40, -2} {
		f.addCube("t", mgl32.Vec3{1, 0, z}, glass)
	}

	f.pass.Render(f.context())
	require.Len(t, f.pass.Opaque(), 5)
	require.Len(t, f.pass.Transparent(), 4)
	for i := 1; i < len(f.pass.Opaque()); i++ {
		assert.LessOrEqual(t, f.pass.Opaque()[i-1].Distance, f.pass.Opaque()[i].Distance)
	}
	for i := 1; i < len(f.pass.Transparent()); i++ {
		assert.GreaterOrEqual(t, f.pass.Transparent()[i-1].Distance, f.pass.Transparent()[i].Distance)
	}
	assert.Equal(t, 9, f.rec.Count("DrawElements"))
	assert.Equal(t, renderer.FrameInfo{Batches: 9, Instances: 9, Polygons: 9 * 12}, f.renderer.FrameInfo())
	// last bound material was the blended one
	assert.Equal(t, glass.GenerateStateMask(), f.renderer.State())
}

func TestEqualDistancesKeepRegistrationOrder(t *testing.T) {
	f := newFixture(t)
	f.camera.Owner().Transform().SetPosition(mgl32.Vec3{})
	m := resource.NewMaterial("m", f.shader)
	var ids []uint32
	for _, pos := range []mgl32.Vec3{{-2, 0, -4}, {2, 0, -4}, {0, 0, -10}, {0, 0, -3}} {
		ids = append(ids, f.addCube("c", pos, m).Owner().ID())
	}

	f.pass.Collect(f.context())
	require.Len(t, f.pass.Opaque(), 4)
	var got []uint32
	for _, d := range f.pass.Opaque() {
		got = append(got, d.ActorID)
	}
	assert.Equal(t, []uint32{ids[3], ids[0], ids[1], ids[2]}, got)
}

func TestMaterialFallback(t *testing.T) {
	f := newFixture(t)
	own := resource.NewMaterial("own", f.shader)
	noShader := resource.NewMaterial("broken", nil)

	a := f.addCube("own", mgl32.Vec3{}, own)
	b := f.addCube("fallback", mgl32.Vec3{0, 1, 0}, noShader)
	f.addCube("unset", mgl32.Vec3{0, -1, 0}, nil)

	f.pass.Collect(f.context())
	require.Len(t, f.pass.Opaque(), 3)
	byActor := map[uint32]*resource.Material{}
	for _, d := range f.pass.Opaque() {
		byActor[d.ActorID] = d.Material
	}
	assert.Same(t, own, byActor[a.Owner().ID()])
	assert.Same(t, f.pass.DefaultMaterial(), byActor[b.Owner().ID()])

	// without a usable default the meshes are skipped, not fatal
	f.pass.SetDefaultMaterial(nil)
	f.pass.Render(f.context())
	assert.Len(t, f.pass.Opaque(), 1)
	assert.Equal(t, 1, f.rec.Count("DrawElements"))
}

func TestMissingMaterialWarnsOncePerActor(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zap.WarnLevel)
	f.pass = NewScenePass(nil, zap.New(core))
	mr := f.addCube("bare", mgl32.Vec3{}, nil)

	f.pass.Collect(f.context())
	f.pass.Collect(f.context())
	assert.Equal(t, 1, logs.FilterMessage("mesh skipped: no material with a shader").Len())
	assert.Equal(t, map[uint32]bool{mr.Owner().ID(): true}, f.pass.warned)

	// the pass keeps only the ID, not the deleted renderer
	mr.Owner().Delete()
	f.pass.Collect(f.context())
	assert.Empty(t, f.pass.Opaque())
	assert.Len(t, f.pass.warned, 1)
}

func TestSkipsRenderersWithoutModelOrInactive(t *testing.T) {
	f := newFixture(t)
	mr := f.addCube("A", mgl32.Vec3{}, nil)
	empty := f.root.CreateActor("Empty", "")
	scene.AddComponent(empty, scene.NewModelRenderer())

	mr.Owner().SetActive(false)
	f.pass.Collect(f.context())
	assert.Empty(t, f.pass.Opaque())
}

func TestCullModes(t *testing.T) {
	f := newFixture(t)
	// camera at origin looking down -Z; the cube sits behind it
	f.camera.Owner().Transform().SetPosition(mgl32.Vec3{})
	mr := f.addCube("A", mgl32.Vec3{0, 0, 10}, nil)

	count := func(mode scene.CullMode) int {
		mr.SetCullMode(mode)
		f.pass.Collect(f.context())
		return len(f.pass.Opaque())
	}
	assert.Equal(t, 1, count(scene.CullDisabled))
	assert.Equal(t, 0, count(scene.CullModel))
	assert.Equal(t, 0, count(scene.CullMesh))

	mr.SetCustomAABB(geom.NewAABB(mgl32.Vec3{-1, -1, -31}, mgl32.Vec3{1, 1, -29}))
	assert.Equal(t, 1, count(scene.CullCustom))
}

func TestLightsAreCapped(t *testing.T) {
	f := newFixture(t)
	f.addCube("A", mgl32.Vec3{}, resource.NewMaterial("m", f.shader))
	for i := 0; i < MaxLights+8; i++ {
		scene.AddComponent(f.root.CreateActor("L", ""), scene.NewLight(scene.LightPoint))
	}
	off := f.root.CreateActor("Off", "")
	scene.AddComponent(off, scene.NewLight(scene.LightSpot))
	off.SetActive(false)

	f.pass.Render(f.context())
	v, ok := f.rec.Uniform(f.shader.ID, "u_LightCount")
	require.True(t, ok)
	assert.Equal(t, int32(MaxLights), v)
	_, ok = f.rec.Uniform(f.shader.ID, "u_Lights[32].type")
	assert.False(t, ok)
	// frame block is uploaded once per shader, not per draw
	views := 0
	for _, c := range f.rec.Filter("Uniform") {
		if c.Args[0] == "ub_View" {
			views++
		}
	}
	assert.Equal(t, 1, views)
}

func TestSkyDrawsFirst(t *testing.T) {
	f := newFixture(t)
	skyShader, err := graphics.NewBuiltinShader(f.rec, graphics.ShaderSky)
	require.NoError(t, err)
	scene.AddComponent(f.root, scene.NewSky(resource.NewMaterial("sky", skyShader)))
	mr := f.addCube("A", mgl32.Vec3{}, nil)

	f.rec.Reset()
	f.pass.Render(f.context())
	draws := f.rec.Filter("DrawElements")
	require.Len(t, draws, 2)
	assert.NotEqual(t, mr.Model().Meshes()[0].Handle(), draws[0].Args[0])
	assert.Equal(t, mr.Model().Meshes()[0].Handle(), draws[1].Args[0])

	f.pass.Dispose()
}

func TestCameraGizmos(t *testing.T) {
	f := newFixture(t)
	other := f.root.CreateActor("Other", "")
	other.Transform().SetPosition(mgl32.Vec3{0, 0, -5})
	scene.AddComponent(other, scene.NewCamera())

	f.pass.ShowCameras = true
	f.pass.CameraModel = f.cube
	f.pass.CameraMaterial = resource.NewMaterial("gizmo", f.shader)
	f.pass.Collect(f.context())
	require.Len(t, f.pass.Transparent(), 1)
	assert.Equal(t, other.ID(), f.pass.Transparent()[0].ActorID)
}

func TestActorIDColorRoundTrip(t *testing.T) {
	for _, id := range []uint32{0, 1, 255, 256, 0x00ABCDEF, 0xFFFFFFFF} {
		c := ActorIDToColor(id)
		px := [4]byte{byte(c[0]*255 + 0.5), byte(c[1]*255 + 0.5), byte(c[2]*255 + 0.5), byte(c[3]*255 + 0.5)}
		assert.Equal(t, id, ColorToActorID(px))
	}
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1.0 / 255}, ActorIDToColor(1))
}

func TestIdPass(t *testing.T) {
	f := newFixture(t)
	a := f.addCube("A", mgl32.Vec3{}, nil)
	b := f.addCube("B", mgl32.Vec3{0, 0, -20}, nil)
	idShader, err := graphics.NewBuiltinShader(f.rec, graphics.ShaderID)
	require.NoError(t, err)
	pass := NewIdPass(idShader, nil)

	pass.Render(f.context())
	require.Len(t, pass.Drawables(), 2)
	assert.Equal(t, a.Owner().ID(), pass.Drawables()[0].ActorID)
	assert.Equal(t, b.Owner().ID(), pass.Drawables()[1].ActorID)
	assert.Equal(t, pipeline.DepthWrite|pipeline.ColorWrite|pipeline.DepthTest, f.renderer.State())
	v, ok := f.rec.Uniform(idShader.ID, "u_ID")
	require.True(t, ok)
	assert.Equal(t, ActorIDToColor(b.Owner().ID()), v)

	// window (10, 20) maps to framebuffer row 600-1-20
	id := a.Owner().ID()
	f.rec.Pixels = func(x, y int32) [4]byte {
		if x == 10 && y == 579 {
			return [4]byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
		}
		return [4]byte{}
	}
	assert.Equal(t, id, pass.Pick(10, 20))
	assert.Zero(t, pass.Pick(11, 20))
	assert.Zero(t, pass.Pick(-1, 0))

	var buf bytes.Buffer
	require.NoError(t, pass.Dump(&buf))
	img, err := bmp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
	r, g, bl, _ := img.At(10, 20).RGBA()
	assert.Equal(t, [3]uint32{id >> 24 & 0xFF, id >> 16 & 0xFF, id >> 8 & 0xFF}, [3]uint32{r >> 8, g >> 8, bl >> 8})

	pass.Dispose()
	assert.Equal(t, 1, f.rec.Count("DeleteFramebuffer"))
}

func TestPipeline(t *testing.T) {
	f := newFixture(t)
	f.addCube("A", mgl32.Vec3{}, nil)
	prof := profiling.New()
	pl := NewPipeline(f.renderer, nil, prof)
	pl.AddPass(f.pass)

	assert.True(t, pl.Render(f.root, 0))
	assert.Equal(t, 1, prof.Count("render.ScenePass"))
	assert.Equal(t, 1, f.renderer.FrameInfo().Batches)

	f.camera.Owner().SetActive(false)
	f.rec.Reset()
	assert.False(t, pl.Render(f.root, 0))
	assert.Zero(t, f.rec.Count("DrawElements"))
	assert.Zero(t, f.renderer.FrameInfo().Batches)
}
