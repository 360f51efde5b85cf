package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// splineTension scales the Catmull-Rom tangents.
const splineTension = 0.5

// CatmullRom evaluates a path through points at t in [0, 1]. Two points interpolate linearly and
// three form a quadratic Bezier. Four or more use a Catmull-Rom segment per pair of points with the
// end points repeated, so the curve starts exactly at the first point and ends at the last.
//
// Parameters:
//   - points: control points
//   - t: path progress, clamped to [0, 1]
//
// Returns:
//   - mgl32.Vec3: the point on the path
func CatmullRom(points []mgl32.Vec3, t float32) mgl32.Vec3 {
	n := len(points)
	switch {
	case n == 0:
		return mgl32.Vec3{}
	case n == 1:
		return points[0]
	}
	if t <= 0 {
		return points[0]
	}
	if t >= 1 {
		return points[n-1]
	}

	switch n {
	case 2:
		return points[0].Add(points[1].Sub(points[0]).Mul(t))
	case 3:
		u := 1 - t
		return points[0].Mul(u * u).Add(points[1].Mul(2 * u * t)).Add(points[2].Mul(t * t))
	}

	scaled := t * float32(n-1)
	seg := int(math.Floor(float64(scaled)))
	if seg > n-2 {
		seg = n - 2
	}
	u := scaled - float32(seg)

	p0 := points[max(seg-1, 0)]
	p1 := points[seg]
	p2 := points[seg+1]
	p3 := points[min(seg+2, n-1)]

	m1 := p2.Sub(p0).Mul(splineTension)
	m2 := p3.Sub(p1).Mul(splineTension)

	u2 := u * u
	u3 := u2 * u
	h00 := 2*u3 - 3*u2 + 1
	h10 := u3 - 2*u2 + u
	h01 := -2*u3 + 3*u2
	h11 := u3 - u2
	return p1.Mul(h00).Add(m1.Mul(h10)).Add(p2.Mul(h01)).Add(m2.Mul(h11))
}
