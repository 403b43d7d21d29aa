package scenefile

import (
	stdmath "math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ac3d-export/pkg/math"
	"github.com/Faultbox/ac3d-export/pkg/scene"
)

func TestLoad(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "workshop.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Workshop", s.Name)

	var names []string
	for _, n := range s.Nodes() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"Bench", "Vice", "Pivot", "Window"}, names)

	bench := s.Find("Bench")
	require.NotNil(t, bench)
	assert.Nil(t, bench.Parent())
	assert.Equal(t, math.Vec3{Z: 1}, bench.Translation)
	assert.True(t, bench.Selected)
	assert.True(t, bench.OnRenderLayer)
	require.Len(t, bench.Children(), 2)

	// 90 degrees around Z.
	assert.InDelta(t, 0, bench.Rotation[0], 1e-9)
	assert.InDelta(t, -1, bench.Rotation[1], 1e-9)
	assert.InDelta(t, 1, bench.Rotation[3], 1e-9)

	require.NotNil(t, bench.Mesh)
	assert.True(t, bench.Mesh.DoubleSided)
	assert.Len(t, bench.Mesh.Vertices, 4)
	require.Len(t, bench.Mesh.Polygons, 2)
	assert.Equal(t, scene.Polygon{Refs: []int{3, 2, 1}, Slot: 1}, bench.Mesh.Polygons[1])

	require.Len(t, bench.Materials, 2)
	steel := bench.Materials[0]
	require.NotNil(t, steel)
	assert.Nil(t, bench.Materials[1])
	assert.Equal(t, "Steel", steel.Name)
	assert.Equal(t, 0.5, steel.Ambient)
	assert.Equal(t, 1.0, steel.Alpha, "alpha defaults to opaque")

	vice := s.Find("Vice")
	require.NotNil(t, vice)
	assert.Same(t, bench, vice.Parent())
	assert.Same(t, steel, vice.Materials[0], "slots naming one material share it")
	assert.Equal(t, math.Identity3(), vice.Rotation)
	assert.False(t, vice.Selected)

	pivot := s.Find("Pivot")
	require.NotNil(t, pivot)
	assert.Equal(t, scene.KindGroup, pivot.Kind())

	window := s.Find("Window")
	require.NotNil(t, window)
	assert.False(t, window.OnRenderLayer)
	glass := window.Materials[0]
	assert.Equal(t, 1.0, glass.Ambient, "ambient defaults to 1")
	assert.Equal(t, 0.25, glass.Alpha)
}

func TestParseUnknownMaterial(t *testing.T) {
	_, err := Parse([]byte(`
nodes:
  - name: a
    materials: [Missing]
`))
	assert.ErrorIs(t, err, ErrUnknownMaterial)
}

func TestParseDuplicateMaterial(t *testing.T) {
	_, err := Parse([]byte(`
materials:
  - name: a
  - name: a
`))
	assert.ErrorIs(t, err, ErrDuplicateMaterial)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("nodes: [unclosed"))
	assert.Error(t, err)

	_, err = Parse([]byte("nodes:\n  - translation: [1, 2]\n"))
	assert.Error(t, err, "translation needs three components")
}

func TestParseEmpty(t *testing.T) {
	s, err := Parse([]byte("name: Nothing\n"))
	require.NoError(t, err)
	assert.Equal(t, "Nothing", s.Name)
	assert.Empty(t, s.Nodes())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRotationIsNormalized(t *testing.T) {
	s, err := Parse([]byte(`
nodes:
  - name: a
    rotation: [0, 0, 2, 2]
`))
	require.NoError(t, err)

	r := s.Nodes()[0].Rotation
	assert.InDelta(t, stdmath.Cos(stdmath.Pi/2), r[0], 1e-9)
	assert.InDelta(t, -1, r[1], 1e-9)
}

func TestParseAxisAngle(t *testing.T) {
	s, err := Parse([]byte(`
nodes:
  - name: quat
    rotation: [0, 0, 0.7071067811865476, 0.7071067811865476]
  - name: turned
    axis_angle: [0, 0, 5, 90]
`))
	require.NoError(t, err)

	want := s.Find("quat").Rotation
	got := s.Find("turned").Rotation
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "element %d", i)
	}
}

func TestParseInvalidRotation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"both forms", "nodes:\n  - name: a\n    rotation: [0, 0, 0, 1]\n    axis_angle: [0, 0, 1, 90]\n"},
		{"zero axis", "nodes:\n  - name: a\n    axis_angle: [0, 0, 0, 90]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidRotation)
		})
	}
}
