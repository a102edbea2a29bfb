package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box. Min <= Max on every axis.
// The zero value is the empty box: zero-sized at the origin.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAABB returns a box spanning a and b in any order
func NewAABB(a, b mgl32.Vec3) AABB {
	return AABB{
		Min: mgl32.Vec3{math32.Min(a[0], b[0]), math32.Min(a[1], b[1]), math32.Min(a[2], b[2])},
		Max: mgl32.Vec3{math32.Max(a[0], b[0]), math32.Max(a[1], b[1]), math32.Max(a[2], b[2])},
	}
}

// FromPoints returns the tightest box enclosing pts, or the zero box when pts is empty.
func FromPoints(pts []mgl32.Vec3) AABB {
	if len(pts) == 0 {
		return AABB{}
	}
	b := AABB{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b = b.Extend(p)
	}
	return b
}

// Extend grows the box to include p
func (b AABB) Extend(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
	return b
}

// Merge returns the smallest box enclosing both boxes
func (b AABB) Merge(o AABB) AABB {
	return b.Extend(o.Min).Extend(o.Max)
}

// Corners returns the eight corners of the box
func (b AABB) Corners() [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{b.Min[0], b.Min[1], b.Min[2]},
		{b.Max[0], b.Min[1], b.Min[2]},
		{b.Min[0], b.Max[1], b.Min[2]},
		{b.Max[0], b.Max[1], b.Min[2]},
		{b.Min[0], b.Min[1], b.Max[2]},
		{b.Max[0], b.Min[1], b.Max[2]},
		{b.Min[0], b.Max[1], b.Max[2]},
		{b.Max[0], b.Max[1], b.Max[2]},
	}
}

// Transformed transforms all eight corners by m and returns their bounding box.
func (b AABB) Transformed(m mgl32.Mat4) AABB {
	corners := b.Corners()
	out := AABB{
		Min: mgl32.Vec3{math32.Inf(1), math32.Inf(1), math32.Inf(1)},
		Max: mgl32.Vec3{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)},
	}
	for _, c := range corners {
		out = out.Extend(m.Mul4x1(c.Vec4(1)).Vec3())
	}
	return out
}

// Center returns the midpoint of the box
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent on each axis
func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside or on the box
func (b AABB) Contains(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// ApproxEqual compares both corners component-wise within an absolute eps
func (b AABB) ApproxEqual(o AABB, eps float32) bool {
	for i := 0; i < 3; i++ {
		if math32.Abs(b.Min[i]-o.Min[i]) > eps || math32.Abs(b.Max[i]-o.Max[i]) > eps {
			return false
		}
	}
	return true
}
