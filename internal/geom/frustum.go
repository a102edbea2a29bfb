package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane indices in Frustum.Planes
const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
	planeCount
)

// Frustum is a view volume described by six inward-facing planes (a, b, c, d)
// and its eight corner points.
type Frustum struct {
	planes [planeCount]mgl32.Vec4
	points [8]mgl32.Vec3
}

// NewFrustum builds a frustum from a combined projection*view matrix
func NewFrustum(projView mgl32.Mat4) *Frustum {
	f := &Frustum{}
	f.Reset(projView)
	return f
}

// Reset rebuilds the planes and corner points from a combined projection*view matrix.
func (f *Frustum) Reset(m mgl32.Mat4) {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	f.planes[PlaneLeft] = normalizePlane(r3.Add(r0))
	f.planes[PlaneRight] = normalizePlane(r3.Sub(r0))
	f.planes[PlaneBottom] = normalizePlane(r3.Add(r1))
	f.planes[PlaneTop] = normalizePlane(r3.Sub(r1))
	f.planes[PlaneNear] = normalizePlane(r3.Add(r2))
	f.planes[PlaneFar] = normalizePlane(r3.Sub(r2))

	f.points[0] = f.intersection(PlaneLeft, PlaneBottom, PlaneNear)
	f.points[1] = f.intersection(PlaneLeft, PlaneTop, PlaneNear)
	f.points[2] = f.intersection(PlaneRight, PlaneBottom, PlaneNear)
	f.points[3] = f.intersection(PlaneRight, PlaneTop, PlaneNear)
	f.points[4] = f.intersection(PlaneLeft, PlaneBottom, PlaneFar)
	f.points[5] = f.intersection(PlaneLeft, PlaneTop, PlaneFar)
	f.points[6] = f.intersection(PlaneRight, PlaneBottom, PlaneFar)
	f.points[7] = f.intersection(PlaneRight, PlaneTop, PlaneFar)
}

func normalizePlane(p mgl32.Vec4) mgl32.Vec4 {
	l := math32.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
	if l == 0 {
		return p
	}
	return p.Mul(1 / l)
}

// intersection solves the three plane equations n·x + d = 0 for their common point.
func (f *Frustum) intersection(a, b, c int) mgl32.Vec3 {
	na, nb, nc := f.planes[a].Vec3(), f.planes[b].Vec3(), f.planes[c].Vec3()
	bc := nb.Cross(nc)
	denom := na.Dot(bc)
	sum := bc.Mul(f.planes[a][3]).
		Add(nc.Cross(na).Mul(f.planes[b][3])).
		Add(na.Cross(nb).Mul(f.planes[c][3]))
	return sum.Mul(-1 / denom)
}

// Planes returns the six planes in Left, Right, Bottom, Top, Near, Far order
func (f *Frustum) Planes() [6]mgl32.Vec4 {
	return f.planes
}

// Corners returns the eight corner points
func (f *Frustum) Corners() [8]mgl32.Vec3 {
	return f.points
}

// IsBoxVisible reports whether the box may intersect the frustum.
// Boxes fully behind any plane are rejected, then boxes the frustum corners all miss on one side.
func (f *Frustum) IsBoxVisible(b AABB) bool {
	corners := b.Corners()
	for _, p := range f.planes {
		outside := 0
		for _, c := range corners {
			if p.Dot(c.Vec4(1)) < 0 {
				outside++
			}
		}
		if outside == 8 {
			return false
		}
	}

	for axis := 0; axis < 3; axis++ {
		above, below := 0, 0
		for _, pt := range f.points {
			if pt[axis] > b.Max[axis] {
				above++
			}
			if pt[axis] < b.Min[axis] {
				below++
			}
		}
		if above == 8 || below == 8 {
			return false
		}
	}
	return true
}

// IsPointVisible reports whether p is inside all six planes
func (f *Frustum) IsPointVisible(p mgl32.Vec3) bool {
	for _, pl := range f.planes {
		if pl.Dot(p.Vec4(1)) < 0 {
			return false
		}
	}
	return true
}

// IsSphereVisible reports whether a sphere may intersect the frustum
func (f *Frustum) IsSphereVisible(center mgl32.Vec3, radius float32) bool {
	for _, pl := range f.planes {
		if pl.Dot(center.Vec4(1)) < -radius {
			return false
		}
	}
	return true
}
