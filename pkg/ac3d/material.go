package ac3d

import (
	"strings"

	"github.com/Faultbox/ac3d-export/pkg/scene"
)

// CollectMaterials returns the materials of every node in the scene that
// passes the filter, descendants included. Materials are deduplicated by
// identity and kept in first-seen order; empty slots are skipped.
func CollectMaterials(s *scene.Scene, filter Filter) []*scene.Material {
	var materials []*scene.Material
	seen := make(map[*scene.Material]bool)

	for _, n := range s.Nodes() {
		if !filter.Passes(n) {
			continue
		}
		for _, m := range n.Materials {
			if m == nil || seen[m] {
				continue
			}
			seen[m] = true
			materials = append(materials, m)
		}
	}
	return materials
}

// MaterialTable maps materials to their global index in the file.
// Index 0 is the implicit default material.
type MaterialTable struct {
	materials []*scene.Material
	index     map[*scene.Material]int
}

// NewMaterialTable assigns 1..n to materials in order. Repeated entries
// keep their first index.
func NewMaterialTable(materials []*scene.Material) *MaterialTable {
	t := &MaterialTable{index: make(map[*scene.Material]int, len(materials))}
	for _, m := range materials {
		if m == nil {
			continue
		}
		if _, ok := t.index[m]; ok {
			continue
		}
		t.materials = append(t.materials, m)
		t.index[m] = len(t.materials)
	}
	return t
}

// Index returns the global index of m, or 0 for nil and unknown
// materials.
func (t *MaterialTable) Index(m *scene.Material) int {
	if m == nil {
		return 0
	}
	return t.index[m]
}

// Materials returns the indexed materials in index order; element i has
// global index i+1.
func (t *MaterialTable) Materials() []*scene.Material {
	return t.materials
}

// Len returns the number of real materials.
func (t *MaterialTable) Len() int {
	return len(t.materials)
}

// SlotIndex remaps a node-local material slot to its global index.
func (t *MaterialTable) SlotIndex(n *scene.Node, slot int) int {
	if len(n.Materials) == 0 {
		return 0
	}
	return t.Index(n.Slot(slot))
}

// FormatMaterialLine returns the MATERIAL record for m.
func FormatMaterialLine(m *scene.Material) string {
	d := m.Diffuse

	var b strings.Builder
	b.WriteString("MATERIAL ")
	b.WriteString(quoteName(m.Name))
	writeChannels(&b, "rgb", d[0], d[1], d[2])
	writeChannels(&b, "amb", d[0]*m.Ambient, d[1]*m.Ambient, d[2]*m.Ambient)
	writeChannels(&b, "emis", d[0]*m.Emit, d[1]*m.Emit, d[2]*m.Emit)
	writeChannels(&b, "spec", m.Specular[0], m.Specular[1], m.Specular[2])
	writeChannels(&b, "shi", m.SpecularIntensity)
	writeChannels(&b, "trans", 1-m.Alpha)
	return b.String()
}

func writeChannels(b *strings.Builder, key string, values ...float64) {
	b.WriteByte(' ')
	b.WriteString(key)
	for _, v := range values {
		b.WriteByte(' ')
		b.WriteString(formatChannel(v))
	}
}
