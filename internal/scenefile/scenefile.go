// Package scenefile loads scene snapshots from YAML documents.
//
// A document names the scene, declares materials once and references
// them from node material slots by name, so nodes naming the same
// material share one *scene.Material:
//
//	name: Workshop
//	materials:
//	  - name: Steel
//	    diffuse: [0.6, 0.6, 0.65]
//	    ambient: 1
//	    specular: [1, 1, 1]
//	    specular_intensity: 0.5
//	    alpha: 1
//	nodes:
//	  - name: Bench
//	    translation: [0, 0, 1]
//	    rotation: [0, 0, 0, 1]   # quaternion x, y, z, w
//	    # or: axis_angle: [0, 0, 1, 90]  # axis x, y, z, degrees
//	    selected: true
//	    materials: [Steel, ""]  # "" is an empty slot
//	    mesh:
//	      vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
//	      polygons:
//	        - refs: [0, 1, 2, 3]
//	          slot: 0
//	    children: []
package scenefile

import (
	"errors"
	"fmt"
	stdmath "math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/ac3d-export/pkg/math"
	"github.com/Faultbox/ac3d-export/pkg/scene"
)

// Scene file errors.
var (
	ErrUnknownMaterial   = errors.New("unknown material")
	ErrDuplicateMaterial = errors.New("duplicate material name")
	ErrInvalidRotation   = errors.New("invalid rotation")
)

type document struct {
	Name      string        `yaml:"name"`
	Materials []materialDoc `yaml:"materials"`
	Nodes     []nodeDoc     `yaml:"nodes"`
}

type materialDoc struct {
	Name              string     `yaml:"name"`
	Diffuse           [3]float64 `yaml:"diffuse"`
	Ambient           *float64   `yaml:"ambient"`
	Emit              float64    `yaml:"emit"`
	Specular          [3]float64 `yaml:"specular"`
	SpecularIntensity float64    `yaml:"specular_intensity"`
	Alpha             *float64   `yaml:"alpha"`
}

type nodeDoc struct {
	Name        string      `yaml:"name"`
	Translation [3]float64  `yaml:"translation"`
	Rotation    *[4]float64 `yaml:"rotation"`
	AxisAngle   *[4]float64 `yaml:"axis_angle"`
	Selected    bool        `yaml:"selected"`
	RenderLayer *bool       `yaml:"render_layer"`
	Materials   []string    `yaml:"materials"`
	Mesh        *meshDoc    `yaml:"mesh"`
	Children    []nodeDoc   `yaml:"children"`
}

type meshDoc struct {
	Vertices    [][3]float64 `yaml:"vertices"`
	Polygons    []polygonDoc `yaml:"polygons"`
	DoubleSided bool         `yaml:"double_sided"`
}

type polygonDoc struct {
	Refs []int `yaml:"refs"`
	Slot int   `yaml:"slot"`
}

// Load reads a scene document from path.
func Load(path string) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// Parse builds a scene from YAML data. Nodes are added to the scene in
// document order, each parent before its children.
func Parse(data []byte) (*scene.Scene, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	materials := make(map[string]*scene.Material, len(doc.Materials))
	for _, md := range doc.Materials {
		if _, ok := materials[md.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateMaterial, md.Name)
		}
		materials[md.Name] = md.material()
	}

	s := scene.New(doc.Name)

	type pending struct {
		doc    *nodeDoc
		parent *scene.Node
	}
	stack := make([]pending, 0, len(doc.Nodes))
	for i := len(doc.Nodes) - 1; i >= 0; i-- {
		stack = append(stack, pending{doc: &doc.Nodes[i]})
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n, err := p.doc.node(materials)
		if err != nil {
			return nil, err
		}
		s.Add(p.parent, n)

		for i := len(p.doc.Children) - 1; i >= 0; i-- {
			stack = append(stack, pending{doc: &p.doc.Children[i], parent: n})
		}
	}
	return s, nil
}

func (md materialDoc) material() *scene.Material {
	m := &scene.Material{
		Name:              md.Name,
		Diffuse:           md.Diffuse,
		Ambient:           1,
		Emit:              md.Emit,
		Specular:          md.Specular,
		SpecularIntensity: md.SpecularIntensity,
		Alpha:             1,
	}
	if md.Ambient != nil {
		m.Ambient = *md.Ambient
	}
	if md.Alpha != nil {
		m.Alpha = *md.Alpha
	}
	return m
}

func (nd *nodeDoc) node(materials map[string]*scene.Material) (*scene.Node, error) {
	n := scene.NewNode(nd.Name)
	n.Translation = math.Vec3FromArray(nd.Translation)
	rot, err := nd.rotation()
	if err != nil {
		return nil, err
	}
	n.Rotation = rot
	n.Selected = nd.Selected
	if nd.RenderLayer != nil {
		n.OnRenderLayer = *nd.RenderLayer
	}

	for _, name := range nd.Materials {
		if name == "" {
			n.Materials = append(n.Materials, nil)
			continue
		}
		m, ok := materials[name]
		if !ok {
			return nil, fmt.Errorf("%w: node %q slot %q", ErrUnknownMaterial, nd.Name, name)
		}
		n.Materials = append(n.Materials, m)
	}

	if nd.Mesh != nil {
		mesh := &scene.Mesh{DoubleSided: nd.Mesh.DoubleSided}
		for _, v := range nd.Mesh.Vertices {
			mesh.Vertices = append(mesh.Vertices, math.Vec3FromArray(v))
		}
		for _, p := range nd.Mesh.Polygons {
			mesh.Polygons = append(mesh.Polygons, scene.Polygon{Refs: p.Refs, Slot: p.Slot})
		}
		n.Mesh = mesh
	}
	return n, nil
}

// rotation returns the node rotation from either the quaternion or the
// axis-angle form. Neither means identity.
func (nd *nodeDoc) rotation() (math.Mat3, error) {
	switch {
	case nd.Rotation != nil && nd.AxisAngle != nil:
		return math.Mat3{}, fmt.Errorf("%w: node %q sets both rotation and axis_angle", ErrInvalidRotation, nd.Name)
	case nd.Rotation != nil:
		return math.QuatFromArray(*nd.Rotation).ToMat3(), nil
	case nd.AxisAngle != nil:
		a := *nd.AxisAngle
		axis := math.Vec3{X: a[0], Y: a[1], Z: a[2]}
		length := axis.Length()
		if length < 1e-9 {
			return math.Mat3{}, fmt.Errorf("%w: node %q has a zero rotation axis", ErrInvalidRotation, nd.Name)
		}
		axis = math.Vec3{X: axis.X / length, Y: axis.Y / length, Z: axis.Z / length}
		return math.QuatFromAxisAngle(axis, a[3]*stdmath.Pi/180).ToMat3(), nil
	default:
		return math.Identity3(), nil
	}
}
