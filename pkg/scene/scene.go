// Package scene provides the read-only scene snapshot consumed by the
// AC3D exporter: a tree of nodes carrying transforms, meshes and
// material slots.
package scene

import "github.com/Faultbox/ac3d-export/pkg/math"

// Kind is the renderable kind of a node.
type Kind int

const (
	KindGroup Kind = iota // Node without mesh data
	KindPoly              // Node carrying a mesh
)

// String returns the AC3D object type name.
func (k Kind) String() string {
	if k == KindPoly {
		return "poly"
	}
	return "group"
}

// Material describes surface shading of a mesh.
type Material struct {
	Name              string
	Diffuse           [3]float64 // RGB, 0-1
	Ambient           float64    // Scales diffuse for the ambient term
	Emit              float64    // Scales diffuse for the emissive term
	Specular          [3]float64 // RGB, 0-1
	SpecularIntensity float64
	Alpha             float64 // 1 = opaque
}

// Node is an entry in the scene graph.
type Node struct {
	Name        string
	Translation math.Vec3
	Rotation    math.Mat3
	Mesh        *Mesh
	Materials   []*Material // Material slots, nil marks an empty slot

	Selected      bool
	OnRenderLayer bool

	parent   *Node
	children []*Node
}

// NewNode returns a node with identity rotation that sits on the render
// layer.
func NewNode(name string) *Node {
	return &Node{
		Name:          name,
		Rotation:      math.Identity3(),
		OnRenderLayer: true,
	}
}

// Kind reports poly when the node carries mesh data.
func (n *Node) Kind() Kind {
	if n.Mesh != nil {
		return KindPoly
	}
	return KindGroup
}

// Parent returns the node's parent, or nil for a top-level node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's children in insertion order.
func (n *Node) Children() []*Node {
	return n.children
}

// Slot returns the material in slot i, or nil when the slot is out of
// range or empty.
func (n *Node) Slot(i int) *Material {
	if i < 0 || i >= len(n.Materials) {
		return nil
	}
	return n.Materials[i]
}

// Scene holds every node in stable iteration order.
type Scene struct {
	Name  string
	nodes []*Node
}

// New creates an empty scene.
func New(name string) *Scene {
	return &Scene{Name: name}
}

// Add appends node to the scene's iteration order and attaches it to
// parent. A nil parent makes node a top-level node. node must not
// already belong to a scene. Adding nil is a no-op.
func (s *Scene) Add(parent, node *Node) *Node {
	if node == nil {
		return nil
	}
	node.parent = parent
	if parent != nil {
		parent.children = append(parent.children, node)
	}
	s.nodes = append(s.nodes, node)
	return node
}

// Nodes returns every node of the scene, descendants included.
func (s *Scene) Nodes() []*Node {
	return s.nodes
}

// Find returns the first node with the given name.
func (s *Scene) Find(name string) *Node {
	for _, n := range s.nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}
