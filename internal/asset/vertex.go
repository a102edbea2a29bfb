package asset

import "github.com/go-gl/mathgl/mgl32"

// VertexFloats is the number of float32 values in one packed vertex
const VertexFloats = 16

// Attribute offsets, in floats, inside a packed vertex
const (
	OffsetPosition  = 0
	OffsetUV0       = 3
	OffsetUV1       = 5
	OffsetNormal    = 7
	OffsetTangent   = 10
	OffsetBitangent = 13
)

// Vertex is one mesh vertex. Field order is the on-disk and GPU layout.
type Vertex struct {
	Position  mgl32.Vec3
	UV0       mgl32.Vec2
	UV1       mgl32.Vec2
	Normal    mgl32.Vec3
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// AppendFloats appends the packed representation of v to dst
func (v Vertex) AppendFloats(dst []float32) []float32 {
	dst = append(dst, v.Position[:]...)
	dst = append(dst, v.UV0[:]...)
	dst = append(dst, v.UV1[:]...)
	dst = append(dst, v.Normal[:]...)
	dst = append(dst, v.Tangent[:]...)
	return append(dst, v.Bitangent[:]...)
}

// vertexFromFloats unpacks one vertex; f must hold VertexFloats values.
func vertexFromFloats(f []float32) Vertex {
	var v Vertex
	copy(v.Position[:], f[OffsetPosition:])
	copy(v.UV0[:], f[OffsetUV0:])
	copy(v.UV1[:], f[OffsetUV1:])
	copy(v.Normal[:], f[OffsetNormal:])
	copy(v.Tangent[:], f[OffsetTangent:])
	copy(v.Bitangent[:], f[OffsetBitangent:])
	return v
}

// PackVertices flattens vertices into a float buffer ready for upload
func PackVertices(vs []Vertex) []float32 {
	out := make([]float32, 0, len(vs)*VertexFloats)
	for _, v := range vs {
		out = v.AppendFloats(out)
	}
	return out
}
