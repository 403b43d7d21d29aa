// Package gltfscene builds scene snapshots from glTF 2.0 assets.
//
// glTF is Y-up; scene snapshots are Z-up. Positions map (x, y, z) to
// (x, -z, y) and rotations are conjugated by the same basis change, so
// the AC3D exporter's (x, z, -y) conversion restores glTF axes.
package gltfscene

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/ac3d-export/pkg/math"
	"github.com/Faultbox/ac3d-export/pkg/scene"
)

// ErrInvalidDocument is returned for documents whose node graph or
// references cannot form a scene tree.
var ErrInvalidDocument = errors.New("invalid glTF document")

var identity4 = [16]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Load opens a .gltf or .glb file and converts its default scene.
func Load(path string, log *zap.Logger) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return FromDocument(doc, log)
}

// meshEntry caches a converted mesh and its material slots, shared by
// every node instancing the same glTF mesh.
type meshEntry struct {
	mesh  *scene.Mesh
	slots []*scene.Material
}

type builder struct {
	doc       *gltf.Document
	log       *zap.Logger
	materials map[int]*scene.Material
	meshes    map[int]*meshEntry
}

// FromDocument converts the document's default scene (or its first scene
// when none is marked default). Every node is selected and on the render
// layer.
func FromDocument(doc *gltf.Document, log *zap.Logger) (*scene.Scene, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &builder{
		doc:       doc,
		log:       log,
		materials: make(map[int]*scene.Material),
		meshes:    make(map[int]*meshEntry),
	}

	name, roots, err := b.roots()
	if err != nil {
		return nil, err
	}
	s := scene.New(name)

	type pending struct {
		index  int
		parent *scene.Node
	}
	stack := make([]pending, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, pending{index: roots[i]})
	}
	visited := make(map[int]bool)

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.index < 0 || p.index >= len(doc.Nodes) {
			return nil, fmt.Errorf("%w: node index %d out of range", ErrInvalidDocument, p.index)
		}
		if visited[p.index] {
			return nil, fmt.Errorf("%w: node %d appears twice in the hierarchy", ErrInvalidDocument, p.index)
		}
		visited[p.index] = true

		n, err := b.node(p.index)
		if err != nil {
			return nil, err
		}
		s.Add(p.parent, n)

		children := doc.Nodes[p.index].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, pending{index: children[i], parent: n})
		}
	}

	log.Debug("converted glTF scene",
		zap.String("scene", name),
		zap.Int("nodes", len(s.Nodes())),
		zap.Int("meshes", len(b.meshes)),
		zap.Int("materials", len(b.materials)))
	return s, nil
}

// roots returns the scene name and root node indices. Documents without
// scenes use every node that is nobody's child.
func (b *builder) roots() (string, []int, error) {
	if len(b.doc.Scenes) == 0 {
		isChild := make(map[int]bool)
		for _, n := range b.doc.Nodes {
			for _, c := range n.Children {
				isChild[c] = true
			}
		}
		var roots []int
		for i := range b.doc.Nodes {
			if !isChild[i] {
				roots = append(roots, i)
			}
		}
		return "", roots, nil
	}

	idx := 0
	if b.doc.Scene != nil {
		idx = *b.doc.Scene
	}
	if idx < 0 || idx >= len(b.doc.Scenes) {
		return "", nil, fmt.Errorf("%w: scene index %d out of range", ErrInvalidDocument, idx)
	}
	sc := b.doc.Scenes[idx]
	return sc.Name, sc.Nodes, nil
}

func (b *builder) node(index int) (*scene.Node, error) {
	gn := b.doc.Nodes[index]

	name := gn.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", index)
	}
	n := scene.NewNode(name)
	n.Selected = true

	basis := math.ZUpFromYUpBasis()
	if m := gn.MatrixOrDefault(); m != identity4 {
		n.Translation = math.ZUpFromYUp(math.Vec3{X: m[12], Y: m[13], Z: m[14]})
		n.Rotation = basis.Mul(math.Mat3FromColumnMajor4(m)).Mul(basis.Transpose())
	} else {
		n.Translation = math.ZUpFromYUp(math.Vec3FromArray(gn.TranslationOrDefault()))
		rot := math.QuatFromArray(gn.RotationOrDefault()).ToMat3()
		n.Rotation = basis.Mul(rot).Mul(basis.Transpose())
	}

	if gn.Mesh != nil {
		entry, err := b.mesh(*gn.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		n.Mesh = entry.mesh
		n.Materials = append([]*scene.Material(nil), entry.slots...)
	}
	return n, nil
}

// mesh merges the triangle primitives of a glTF mesh into one mesh. Each
// distinct primitive material becomes a slot; primitives without a
// material reference no slot and fall back to the default material.
func (b *builder) mesh(index int) (*meshEntry, error) {
	if entry, ok := b.meshes[index]; ok {
		return entry, nil
	}
	if index < 0 || index >= len(b.doc.Meshes) {
		return nil, fmt.Errorf("%w: mesh index %d out of range", ErrInvalidDocument, index)
	}
	gm := b.doc.Meshes[index]

	entry := &meshEntry{mesh: &scene.Mesh{}}
	slotOf := make(map[int]int)

	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			b.log.Warn("skipping non-triangle primitive",
				zap.String("mesh", gm.Name), zap.Int("primitive", pi))
			continue
		}
		posIndex, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			b.log.Warn("skipping primitive without positions",
				zap.String("mesh", gm.Name), zap.Int("primitive", pi))
			continue
		}
		acc, err := b.accessor(posIndex)
		if err != nil {
			return nil, err
		}
		positions, err := modeler.ReadPosition(b.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("reading positions of mesh %q: %w", gm.Name, err)
		}

		var indices []uint32
		if prim.Indices != nil {
			acc, err := b.accessor(*prim.Indices)
			if err != nil {
				return nil, err
			}
			if indices, err = modeler.ReadIndices(b.doc, acc, nil); err != nil {
				return nil, fmt.Errorf("reading indices of mesh %q: %w", gm.Name, err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		slot := -1
		if prim.Material != nil {
			if slot, err = b.slot(entry, slotOf, *prim.Material); err != nil {
				return nil, err
			}
		}

		base := len(entry.mesh.Vertices)
		for _, p := range positions {
			v := math.Vec3{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
			entry.mesh.Vertices = append(entry.mesh.Vertices, math.ZUpFromYUp(v))
		}
		for i := 0; i+2 < len(indices); i += 3 {
			entry.mesh.Polygons = append(entry.mesh.Polygons, scene.Polygon{
				Refs: []int{base + int(indices[i]), base + int(indices[i+1]), base + int(indices[i+2])},
				Slot: slot,
			})
		}
	}

	b.meshes[index] = entry
	return entry, nil
}

func (b *builder) accessor(index int) (*gltf.Accessor, error) {
	if index < 0 || index >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor index %d out of range", ErrInvalidDocument, index)
	}
	return b.doc.Accessors[index], nil
}

// slot returns the slot of material index in entry, adding it on first
// use.
func (b *builder) slot(entry *meshEntry, slotOf map[int]int, index int) (int, error) {
	if slot, ok := slotOf[index]; ok {
		return slot, nil
	}
	if index < 0 || index >= len(b.doc.Materials) {
		return 0, fmt.Errorf("%w: material index %d out of range", ErrInvalidDocument, index)
	}
	gm := b.doc.Materials[index]
	if gm.DoubleSided {
		entry.mesh.DoubleSided = true
	}

	m, ok := b.materials[index]
	if !ok {
		m = convertMaterial(gm, index)
		b.materials[index] = m
	}
	entry.slots = append(entry.slots, m)
	slotOf[index] = len(entry.slots) - 1
	return slotOf[index], nil
}

// convertMaterial maps PBR metallic-roughness parameters onto the AC3D
// material model.
func convertMaterial(gm *gltf.Material, index int) *scene.Material {
	m := &scene.Material{
		Name:     gm.Name,
		Diffuse:  [3]float64{1, 1, 1},
		Ambient:  1,
		Specular: [3]float64{1, 1, 1},
		Alpha:    1,
	}
	if m.Name == "" {
		m.Name = fmt.Sprintf("material_%d", index)
	}

	roughness := 1.0
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if c := pbr.BaseColorFactor; c != nil {
			m.Diffuse = [3]float64{c[0], c[1], c[2]}
			m.Alpha = c[3]
		}
		if pbr.RoughnessFactor != nil {
			roughness = *pbr.RoughnessFactor
		}
	}
	m.SpecularIntensity = 1 - roughness

	e := gm.EmissiveFactor
	m.Emit = max(e[0], e[1], e[2])
	return m
}
