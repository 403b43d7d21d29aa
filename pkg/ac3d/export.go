package ac3d

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/ac3d-export/pkg/math"
	"github.com/Faultbox/ac3d-export/pkg/scene"
)

// Filter selects which nodes are exported.
type Filter struct {
	LimitToRenderLayers bool // Only nodes on a render layer
	LimitToSelection    bool // Only selected nodes
}

// Passes reports whether n is exported under the filter.
func (f Filter) Passes(n *scene.Node) bool {
	if f.LimitToRenderLayers && !n.OnRenderLayer {
		return false
	}
	if f.LimitToSelection && !n.Selected {
		return false
	}
	return true
}

// CollectRoots returns the top-level nodes that pass the filter, in scene
// order.
func CollectRoots(s *scene.Scene, filter Filter) []*scene.Node {
	var roots []*scene.Node
	for _, n := range s.Nodes() {
		if n.Parent() == nil && filter.Passes(n) {
			roots = append(roots, n)
		}
	}
	return roots
}

// TransformCoordinate converts a Z-up position to AC3D's Y-up axes.
func TransformCoordinate(v math.Vec3) math.Vec3 {
	return math.Vec3{X: v.X, Y: v.Z, Z: -v.Y}
}

// Exporter writes scenes as AC3D text.
type Exporter struct {
	Filter Filter

	// DoubleSidedFlags sets the AC3D two-sided surface bit (SURF 0X20) for
	// double-sided meshes. When false every surface is written as SURF 0X0.
	DoubleSidedFlags bool

	Logger *zap.Logger
}

// Export renders s with the given filter.
func Export(s *scene.Scene, filter Filter) (string, error) {
	e := &Exporter{Filter: filter}
	return e.Export(s)
}

// Export renders s and returns the file body.
func (e *Exporter) Export(s *scene.Scene) (string, error) {
	var b strings.Builder
	if err := e.Write(&b, s); err != nil {
		return "", err
	}
	return b.String(), nil
}

// planned is one object block in emission order.
type planned struct {
	node *scene.Node
	kids []*scene.Node
}

// Write renders s to w. The scene is validated before anything is
// written, so a rejected scene leaves w untouched.
func (e *Exporter) Write(w io.Writer, s *scene.Scene) error {
	if s == nil {
		return fmt.Errorf("%w: nil scene", ErrInvalidSceneData)
	}
	roots := CollectRoots(s, e.Filter)
	table := NewMaterialTable(CollectMaterials(s, e.Filter))

	blocks, err := e.plan(roots)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, Header)
	fmt.Fprintln(bw, DefaultMaterialLine)
	for _, m := range table.Materials() {
		fmt.Fprintln(bw, FormatMaterialLine(m))
	}

	fmt.Fprintln(bw, "OBJECT world")
	fmt.Fprintf(bw, "name %s\n", quoteName(s.Name))
	fmt.Fprintf(bw, "kids %d\n", len(roots))

	var vertices, surfaces int
	for _, b := range blocks {
		e.writeObject(bw, b, table)
		if b.node.Mesh != nil {
			vertices += len(b.node.Mesh.Vertices)
			surfaces += len(b.node.Mesh.Polygons)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing AC3D output: %w", err)
	}

	e.logger().Debug("exported scene",
		zap.String("scene", s.Name),
		zap.Int("roots", len(roots)),
		zap.Int("materials", table.Len()),
		zap.Int("objects", len(blocks)),
		zap.Int("vertices", vertices),
		zap.Int("surfaces", surfaces))

	return nil
}

// plan walks the exportable trees depth-first with an explicit stack and
// validates mesh data on the way.
func (e *Exporter) plan(roots []*scene.Node) ([]planned, error) {
	var blocks []planned

	stack := make([]*scene.Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := validateMesh(n); err != nil {
			return nil, err
		}

		var kids []*scene.Node
		for _, c := range n.Children() {
			if e.Filter.Passes(c) {
				kids = append(kids, c)
			}
		}
		blocks = append(blocks, planned{node: n, kids: kids})

		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return blocks, nil
}

func validateMesh(n *scene.Node) error {
	if n.Mesh == nil {
		return nil
	}
	count := len(n.Mesh.Vertices)
	for i, p := range n.Mesh.Polygons {
		for _, ref := range p.Refs {
			if ref < 0 || ref >= count {
				return fmt.Errorf("%w: node %q polygon %d references vertex %d of %d",
					ErrInvalidSceneData, n.Name, i, ref, count)
			}
		}
	}
	return nil
}

func (e *Exporter) writeObject(w *bufio.Writer, b planned, table *MaterialTable) {
	n := b.node

	fmt.Fprintf(w, "OBJECT %s\n", n.Kind())
	fmt.Fprintf(w, "name %s\n", quoteName(n.Name))

	loc := TransformCoordinate(n.Translation)
	fmt.Fprintf(w, "loc %s %s %s\n", formatFixed(loc.X), formatFixed(loc.Y), formatFixed(loc.Z))

	// Rotation rows are written as stored, without the axis swap applied
	// to positions.
	w.WriteString("rot")
	for _, v := range n.Rotation {
		w.WriteByte(' ')
		w.WriteString(formatFixed(v))
	}
	w.WriteByte('\n')

	if m := n.Mesh; m != nil {
		fmt.Fprintf(w, "numvert %d\n", len(m.Vertices))
		for _, v := range m.Vertices {
			c := TransformCoordinate(v)
			fmt.Fprintf(w, "%s %s %s\n", formatFixed(c.X), formatFixed(c.Y), formatFixed(c.Z))
		}

		flags := e.surfaceFlags(m)
		fmt.Fprintf(w, "numsurf %d\n", len(m.Polygons))
		for _, p := range m.Polygons {
			fmt.Fprintf(w, "SURF 0X%X\n", flags)
			fmt.Fprintf(w, "mat %d\n", table.SlotIndex(n, p.Slot))
			fmt.Fprintf(w, "refs %d\n", len(p.Refs))
			for _, ref := range p.Refs {
				fmt.Fprintf(w, "%d 0 0\n", ref)
			}
		}
	}

	fmt.Fprintf(w, "kids %d\n", len(b.kids))
}

// surfaceFlags returns the SURF flag byte: polygon type in the low nibble,
// shading bits in the high nibble.
func (e *Exporter) surfaceFlags(m *scene.Mesh) uint32 {
	var shading uint32
	if e.DoubleSidedFlags && m.DoubleSided {
		shading |= 1 << 1
	}
	return shading << 4
}

func (e *Exporter) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
