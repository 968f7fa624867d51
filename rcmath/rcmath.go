// Package rcmath holds the small amount of vector and matrix math the
// runtime needs on top of linmath.
package rcmath

import (
	"math"

	lin "github.com/xlab/linmath"
	"golang.org/x/exp/constraints"
)

const Epsilon = 1.192092896e-07

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Vec3LengthSquared is the dot product of v with itself.
func Vec3LengthSquared(v lin.Vec3) float32 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

func Vec3Length(v lin.Vec3) float32 {
	return float32(math.Sqrt(float64(Vec3LengthSquared(v))))
}

func Mat4Identity() lin.Mat4x4 {
	var m lin.Mat4x4
	m.Identity()
	return m
}

// Mat4Mul returns a * b.
func Mat4Mul(a, b lin.Mat4x4) lin.Mat4x4 {
	var m lin.Mat4x4
	m.Mult(&a, &b)
	return m
}

// Mat4Inverse returns the inverse of m. The result is meaningless when m
// is singular.
func Mat4Inverse(m lin.Mat4x4) lin.Mat4x4 {
	var inv lin.Mat4x4
	inv.Invert(&m)
	return inv
}

// Mat4ApproxEqual compares element wise within tolerance.
func Mat4ApproxEqual(a, b lin.Mat4x4, tolerance float32) bool {
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			if float32(math.Abs(float64(a[c][r]-b[c][r]))) > tolerance {
				return false
			}
		}
	}
	return true
}

// Perspective builds a GL style projection. fovY is in degrees.
func Perspective(fovY, aspect, near, far float32) lin.Mat4x4 {
	var m lin.Mat4x4
	m.Perspective(lin.DegreesToRadians(fovY), aspect, near, far)
	return m
}

// vulkanClip flips Y and maps depth from [-1, 1] to [0, 1].
var vulkanClip = lin.Mat4x4{
	{1, 0, 0, 0},
	{0, -1, 0, 0},
	{0, 0, 0.5, 0},
	{0, 0, 0.5, 1},
}

// VulkanProjection converts a GL style projection matrix to Vulkan clip
// space, where (-1, -1) is the top left corner and depth is [0, 1].
func VulkanProjection(proj lin.Mat4x4) lin.Mat4x4 {
	return Mat4Mul(vulkanClip, proj)
}
