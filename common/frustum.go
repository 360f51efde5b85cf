package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance returns the signed distance from p to the plane; positive is inside.
func (p Plane) SignedDistance(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.Distance
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum extracts frustum planes from a view-projection matrix using the Gribb/Hartmann
// method: each side plane is the 4th matrix row plus or minus row 0 or 1. Depth is WebGPU's [0, 1],
// so the near plane is row 2 alone and the far plane is row 3 minus row 2.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - vp: the combined Projection * View matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustum(vp mgl32.Mat4) Frustum {
	var f Frustum
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{vp[i], vp[4+i], vp[8+i], vp[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	f.Planes[FrustumLeft] = planeFrom(r3.Add(r0))
	f.Planes[FrustumRight] = planeFrom(r3.Sub(r0))
	f.Planes[FrustumBottom] = planeFrom(r3.Add(r1))
	f.Planes[FrustumTop] = planeFrom(r3.Sub(r1))
	f.Planes[FrustumNear] = planeFrom(r2)
	f.Planes[FrustumFar] = planeFrom(r3.Sub(r2))
	return f
}

// planeFrom normalizes a raw plane equation so that the normal has unit length.
func planeFrom(v mgl32.Vec4) Plane {
	p := Plane{Normal: v.Vec3(), Distance: v[3]}
	length := float32(math.Sqrt(float64(p.Normal.Dot(p.Normal))))
	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
	return p
}

// IntersectsAABB reports whether the box is at least partially inside the frustum.
// For each plane the box corner furthest along the plane normal (the p-vertex) is tested;
// if it lies behind any plane the box is fully outside.
func (f Frustum) IntersectsAABB(b AABB) bool {
	for i := range f.Planes {
		p := &f.Planes[i]
		pv := b.Min
		if p.Normal[0] >= 0 {
			pv[0] = b.Max[0]
		}
		if p.Normal[1] >= 0 {
			pv[1] = b.Max[1]
		}
		if p.Normal[2] >= 0 {
			pv[2] = b.Max[2]
		}
		if p.SignedDistance(pv) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether pt is on the inner side of every plane.
func (f Frustum) ContainsPoint(pt mgl32.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].SignedDistance(pt) < 0 {
			return false
		}
	}
	return true
}
