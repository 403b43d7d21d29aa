// Package math provides the vector, quaternion and matrix types used by
// scene nodes.
package math

import "math"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

// Length returns the magnitude.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Vec3FromArray builds a vector from [x, y, z].
func Vec3FromArray(a [3]float64) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}

// ZUpFromYUp converts a Y-up position (glTF convention) to Z-up.
func ZUpFromYUp(v Vec3) Vec3 {
	return ZUpFromYUpBasis().MulVec3(v)
}
