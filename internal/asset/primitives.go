package asset

import "github.com/go-gl/mathgl/mgl32"

type cubeFace struct {
	normal, tangent, bitangent mgl32.Vec3
}

var cubeFaces = [6]cubeFace{
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
}

// CubeMesh builds a cube of the given half extent centered at the origin,
// two counter-clockwise triangles per face.
func CubeMesh(half float32, materialIndex uint32) *Mesh {
	uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range cubeFaces {
		base := uint32(len(vertices))
		for i, c := range corners {
			p := f.normal.Add(f.tangent.Mul(c[0])).Add(f.bitangent.Mul(c[1])).Mul(half)
			vertices = append(vertices, Vertex{
				Position:  p,
				UV0:       uvs[i],
				UV1:       uvs[i],
				Normal:    f.normal,
				Tangent:   f.tangent,
				Bitangent: f.bitangent,
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh(vertices, indices, materialIndex)
}

// QuadMesh builds a unit quad in the XY plane facing +Z
func QuadMesh(half float32, materialIndex uint32) *Mesh {
	n := mgl32.Vec3{0, 0, 1}
	tan := mgl32.Vec3{1, 0, 0}
	bit := mgl32.Vec3{0, 1, 0}
	vertices := []Vertex{
		{Position: mgl32.Vec3{-half, -half, 0}, UV0: mgl32.Vec2{0, 0}, Normal: n, Tangent: tan, Bitangent: bit},
		{Position: mgl32.Vec3{half, -half, 0}, UV0: mgl32.Vec2{1, 0}, Normal: n, Tangent: tan, Bitangent: bit},
		{Position: mgl32.Vec3{half, half, 0}, UV0: mgl32.Vec2{1, 1}, Normal: n, Tangent: tan, Bitangent: bit},
		{Position: mgl32.Vec3{-half, half, 0}, UV0: mgl32.Vec2{0, 1}, Normal: n, Tangent: tan, Bitangent: bit},
	}
	return NewMesh(vertices, []uint32{0, 1, 2, 0, 2, 3}, materialIndex)
}

// CubeModel is a single-mesh cube with one material slot named slot
func CubeModel(half float32, slot string) *Model {
	return NewModel([]*Mesh{CubeMesh(half, 0)}, []string{slot})
}
