package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Up is the world up axis.
var Up = mgl32.Vec3{0, 1, 0}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Perspective creates a right-handed perspective projection matrix that maps view-space depth
// into the WebGPU clip range [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// Ortho creates a right-handed orthographic projection matrix with WebGPU [0, 1] depth.
//
// Parameters:
//   - left, right, bottom, top: view volume extents
//   - near, far: clipping plane distances along -Z
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Ortho(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	var out mgl32.Mat4
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = 1 / (near - far)
	out[12] = -(right + left) / (right - left)
	out[13] = -(top + bottom) / (top - bottom)
	out[14] = near / (near - far)
	out[15] = 1
	return out
}

// LookAt builds a view matrix from eye, center and up vectors. A degenerate up (parallel to the
// view direction) is replaced with +Z so the basis stays finite.
func LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	dir := center.Sub(eye)
	if dir.Len() > 0 && math.Abs(float64(dir.Normalize().Dot(up.Normalize()))) > 0.9999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	return mgl32.LookAtV(eye, center, up)
}

// TRS composes translation, rotation and scale into T·R·S.
func TRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t[0], t[1], t[2]).Mul4(r.Mat4()).Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// Slerp performs shortest-arc spherical linear interpolation between two unit quaternions.
// Nearly parallel inputs fall back to a normalized lerp.
//
// Parameters:
//   - a: start rotation
//   - b: end rotation
//   - t: interpolation factor in [0, 1]
//
// Returns:
//   - mgl32.Quat: the interpolated unit quaternion
func Slerp(a, b mgl32.Quat, t float32) mgl32.Quat {
	dot := a.Dot(b)
	if dot < 0 {
		b = b.Scale(-1)
		dot = -dot
	}
	if dot > 0.9995 {
		return mgl32.Quat{
			W: a.W + (b.W-a.W)*t,
			V: a.V.Add(b.V.Sub(a.V).Mul(t)),
		}.Normalize()
	}
	theta0 := math.Acos(float64(dot))
	theta := theta0 * float64(t)
	sinTheta0 := math.Sin(theta0)
	s0 := float32(math.Cos(theta) - float64(dot)*math.Sin(theta)/sinTheta0)
	s1 := float32(math.Sin(theta) / sinTheta0)
	return a.Scale(s0).Add(b.Scale(s1))
}

// YawQuat returns the rotation about +Y by yaw radians.
func YawQuat(yaw float32) mgl32.Quat {
	return mgl32.QuatRotate(yaw, Up)
}

// YawForward returns the horizontal forward vector for a yaw, (−sin ψ, 0, −cos ψ).
func YawForward(yaw float32) mgl32.Vec3 {
	s, c := math.Sincos(float64(yaw))
	return mgl32.Vec3{float32(-s), 0, float32(-c)}
}

// LerpVec3 linearly interpolates between two vectors.
func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Lerp linearly interpolates between two scalars.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DistanceXZ returns the horizontal distance between two points.
func DistanceXZ(a, b mgl32.Vec3) float32 {
	dx := a[0] - b[0]
	dz := a[2] - b[2]
	return float32(math.Sqrt(float64(dx*dx + dz*dz)))
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math.Pi / 180
}
