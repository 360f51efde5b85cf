package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// rayInfinity stands in for 1/0 when a ray direction component is zero.
const rayInfinity = 1e30

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// AABBFromCenter builds a box from its center and half extents.
func AABBFromCenter(center, half mgl32.Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Center returns the box midpoint.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extent along each axis.
func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Union returns the smallest box enclosing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{min(b.Min[0], o.Min[0]), min(b.Min[1], o.Min[1]), min(b.Min[2], o.Min[2])},
		Max: mgl32.Vec3{max(b.Max[0], o.Max[0]), max(b.Max[1], o.Max[1]), max(b.Max[2], o.Max[2])},
	}
}

// Expand grows the box by pad on every side.
func (b AABB) Expand(pad float32) AABB {
	p := mgl32.Vec3{pad, pad, pad}
	return AABB{Min: b.Min.Sub(p), Max: b.Max.Add(p)}
}

// Cube returns a cube sharing the box center whose side is the largest box extent.
func (b AABB) Cube() AABB {
	s := b.Size()
	half := max(s[0], s[1], s[2]) / 2
	return AABBFromCenter(b.Center(), mgl32.Vec3{half, half, half})
}

// Intersects reports whether two boxes overlap (touching counts).
func (b AABB) Intersects(o AABB) bool {
	return b.Min[0] <= o.Max[0] && b.Max[0] >= o.Min[0] &&
		b.Min[1] <= o.Max[1] && b.Max[1] >= o.Min[1] &&
		b.Min[2] <= o.Max[2] && b.Max[2] >= o.Min[2]
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// InverseDirection returns 1/dir per component, substituting ±1e30 for zero components.
func InverseDirection(dir mgl32.Vec3) mgl32.Vec3 {
	var inv mgl32.Vec3
	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if math.Signbit(float64(dir[i])) {
				inv[i] = -rayInfinity
			} else {
				inv[i] = rayInfinity
			}
			continue
		}
		inv[i] = 1 / dir[i]
	}
	return inv
}

// RaySlab intersects a ray against the box using the slab method.
//
// Parameters:
//   - origin: ray origin
//   - invDir: per-component reciprocal of the ray direction (see InverseDirection)
//
// Returns:
//   - tmin: entry distance (negative when the origin is inside)
//   - tmax: exit distance
//   - bool: true if the infinite line hits the box in front of or around the origin
func (b AABB) RaySlab(origin, invDir mgl32.Vec3) (float32, float32, bool) {
	tmin := float32(-math.MaxFloat32)
	tmax := float32(math.MaxFloat32)
	for i := 0; i < 3; i++ {
		t1 := (b.Min[i] - origin[i]) * invDir[i]
		t2 := (b.Max[i] - origin[i]) * invDir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}
	if tmax < 0 || tmin > tmax {
		return tmin, tmax, false
	}
	return tmin, tmax, true
}

// Raycast returns the hit distance of a ray against the box. When the origin is inside the box
// the exit distance is reported.
func (b AABB) Raycast(origin, invDir mgl32.Vec3) (float32, bool) {
	tmin, tmax, ok := b.RaySlab(origin, invDir)
	if !ok {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
