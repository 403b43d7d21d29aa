package scene

import "github.com/Faultbox/ac3d-export/pkg/math"

// Polygon is one face of a mesh.
type Polygon struct {
	Refs []int // Indices into the owning mesh's vertices
	Slot int   // Index into the owning node's material slots
}

// Mesh is a polygon mesh.
type Mesh struct {
	Vertices    []math.Vec3
	Polygons    []Polygon
	DoubleSided bool
}

// Triangulate returns a copy of the mesh where every polygon with more
// than three corners is split into a triangle fan around its first
// corner. Polygons with fewer than three corners are kept as they are.
func (m *Mesh) Triangulate() *Mesh {
	out := &Mesh{
		Vertices:    append([]math.Vec3(nil), m.Vertices...),
		Polygons:    make([]Polygon, 0, len(m.Polygons)),
		DoubleSided: m.DoubleSided,
	}
	for _, p := range m.Polygons {
		if len(p.Refs) <= 3 {
			out.Polygons = append(out.Polygons, Polygon{
				Refs: append([]int(nil), p.Refs...),
				Slot: p.Slot,
			})
			continue
		}
		for i := 1; i+1 < len(p.Refs); i++ {
			out.Polygons = append(out.Polygons, Polygon{
				Refs: []int{p.Refs[0], p.Refs[i], p.Refs[i+1]},
				Slot: p.Slot,
			})
		}
	}
	return out
}

// Triangulate replaces the mesh of every node in the scene with its
// triangulated copy.
func (s *Scene) Triangulate() {
	for _, n := range s.nodes {
		if n.Mesh != nil {
			n.Mesh = n.Mesh.Triangulate()
		}
	}
}
