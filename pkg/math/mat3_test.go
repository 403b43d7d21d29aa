package math

import (
	"math"
	"testing"
)

func TestMat3Identity(t *testing.T) {
	m := Identity3()
	v := Vec3{X: 1, Y: 2, Z: 3}
	if got := m.MulVec3(v); got != v {
		t.Errorf("identity should not change vector, got %v", got)
	}
	if got := m.Mul(m); got != m {
		t.Errorf("identity * identity should be identity, got %v", got)
	}
}

func TestMat3Transpose(t *testing.T) {
	m := Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}
	want := Mat3{1, 4, 7, 2, 5, 8, 3, 6, 9}

	if got := m.Transpose(); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got := m.Transpose().Transpose(); got != m {
		t.Errorf("double transpose should restore the matrix, got %v", got)
	}
}

func TestMat3Mul(t *testing.T) {
	a := Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}
	b := Mat3{9, 8, 7, 6, 5, 4, 3, 2, 1}
	want := Mat3{30, 24, 18, 84, 69, 54, 138, 114, 90}

	if got := a.Mul(b); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestZUpFromYUp(t *testing.T) {
	v := Vec3{X: 1, Y: 2, Z: 3}
	want := Vec3{X: 1, Y: -3, Z: 2}

	if got := ZUpFromYUp(v); got != want {
		t.Errorf("ZUpFromYUp: expected %v, got %v", want, got)
	}
	if got := ZUpFromYUpBasis().MulVec3(v); got != want {
		t.Errorf("ZUpFromYUpBasis: expected %v, got %v", want, got)
	}
}

func TestMat3FromColumnMajor4(t *testing.T) {
	rot := QuatFromAxisAngle(Vec3{X: 1}, math.Pi/3).ToMat3()

	// Build column-major 4x4 with translation (5, 6, 7).
	var m [16]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m[c*4+r] = rot[r*3+c]
		}
	}
	m[12], m[13], m[14], m[15] = 5, 6, 7, 1

	if got := Mat3FromColumnMajor4(m); got != rot {
		t.Errorf("expected %v, got %v", rot, got)
	}
}
