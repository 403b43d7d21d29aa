package ac3d

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Material is a parsed MATERIAL record.
type Material struct {
	Name  string
	RGB   [3]float64
	Amb   [3]float64
	Emis  [3]float64
	Spec  [3]float64
	Shi   float64
	Trans float64
}

// Ref is one surface corner.
type Ref struct {
	Index int
	U, V  float64
}

// Surface is a parsed SURF block.
type Surface struct {
	Flags uint32
	Mat   int
	Refs  []Ref
}

// Object is a parsed OBJECT block with its nested kids.
type Object struct {
	Type     string // world, poly or group
	Name     string
	Loc      [3]float64
	Rot      [9]float64
	Vertices [][3]float64
	Surfaces []Surface
	Kids     []*Object
}

// File is a parsed AC3D file.
type File struct {
	Header    string
	Materials []Material
	World     *Object
}

// Stats summarizes a parsed file.
type Stats struct {
	Materials int
	Objects   int // Excluding the world object
	Vertices  int
	Surfaces  int
}

// Stats counts objects, vertices and surfaces below the world object.
func (f *File) Stats() Stats {
	st := Stats{Materials: len(f.Materials)}
	if f.World == nil {
		return st
	}
	stack := append([]*Object(nil), f.World.Kids...)
	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		st.Objects++
		st.Vertices += len(o.Vertices)
		st.Surfaces += len(o.Surfaces)
		stack = append(stack, o.Kids...)
	}
	return st
}

type parser struct {
	sc   *bufio.Scanner
	line int
}

// Parse reads an AC3D file. Texture, crease and url records are accepted
// and discarded.
func Parse(r io.Reader) (*File, error) {
	p := &parser{sc: bufio.NewScanner(r)}
	p.sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	header, ok := p.next()
	if !ok {
		return nil, p.eof()
	}
	if !strings.HasPrefix(header, "AC3D") {
		return nil, ErrInvalidHeader
	}
	f := &File{Header: header}

	for {
		line, ok := p.next()
		if !ok {
			return nil, p.eof()
		}
		tokens := tokenize(line)
		switch tokens[0] {
		case "MATERIAL":
			m, err := p.parseMaterial(tokens)
			if err != nil {
				return nil, err
			}
			f.Materials = append(f.Materials, m)
		case "OBJECT":
			world, err := p.parseTree(tokens)
			if err != nil {
				return nil, err
			}
			f.World = world
			return f, nil
		default:
			return nil, p.malformed("unexpected %q", tokens[0])
		}
	}
}

func (p *parser) next() (string, bool) {
	for p.sc.Scan() {
		p.line++
		line := strings.TrimSpace(p.sc.Text())
		if line != "" {
			return line, true
		}
	}
	return "", false
}

func (p *parser) eof() error {
	if err := p.sc.Err(); err != nil {
		return fmt.Errorf("reading AC3D data: %w", err)
	}
	return fmt.Errorf("%w at line %d", ErrTruncatedData, p.line)
}

func (p *parser) malformed(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedRecord, p.line, fmt.Sprintf(format, args...))
}

func (p *parser) parseMaterial(tokens []string) (Material, error) {
	var m Material
	if len(tokens) < 2 {
		return m, p.malformed("MATERIAL without name")
	}
	m.Name = tokens[1]

	for i := 2; i < len(tokens); {
		key := tokens[i]
		var dst []float64
		switch key {
		case "rgb":
			dst = m.RGB[:]
		case "amb":
			dst = m.Amb[:]
		case "emis":
			dst = m.Emis[:]
		case "spec":
			dst = m.Spec[:]
		case "shi":
			dst = []float64{0}
		case "trans":
			dst = []float64{0}
		default:
			return m, p.malformed("unknown material field %q", key)
		}
		if err := p.floats(tokens[i+1:], dst); err != nil {
			return m, err
		}
		switch key {
		case "shi":
			m.Shi = dst[0]
		case "trans":
			m.Trans = dst[0]
		}
		i += 1 + len(dst)
	}
	return m, nil
}

type pendingObject struct {
	obj       *Object
	remaining int
}

// parseTree reads the object introduced by tokens and all of its
// descendants.
func (p *parser) parseTree(tokens []string) (*Object, error) {
	root, kids, err := p.parseObject(tokens)
	if err != nil {
		return nil, err
	}

	stack := []pendingObject{{obj: root, remaining: kids}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.remaining == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		top.remaining--

		line, ok := p.next()
		if !ok {
			return nil, p.eof()
		}
		child, n, err := p.parseObject(tokenize(line))
		if err != nil {
			return nil, err
		}
		top.obj.Kids = append(top.obj.Kids, child)
		stack = append(stack, pendingObject{obj: child, remaining: n})
	}
	return root, nil
}

// parseObject reads one OBJECT block up to and including its kids record.
func (p *parser) parseObject(tokens []string) (*Object, int, error) {
	if tokens[0] != "OBJECT" || len(tokens) < 2 {
		return nil, 0, p.malformed("expected OBJECT, got %q", strings.Join(tokens, " "))
	}
	obj := &Object{
		Type: tokens[1],
		Rot:  [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
	}

	for {
		line, ok := p.next()
		if !ok {
			return nil, 0, p.eof()
		}
		tokens := tokenize(line)
		args := tokens[1:]

		switch tokens[0] {
		case "name":
			if len(args) < 1 {
				return nil, 0, p.malformed("name without value")
			}
			obj.Name = args[0]
		case "loc":
			if err := p.floats(args, obj.Loc[:]); err != nil {
				return nil, 0, err
			}
		case "rot":
			if err := p.floats(args, obj.Rot[:]); err != nil {
				return nil, 0, err
			}
		case "numvert":
			n, err := p.count(args)
			if err != nil {
				return nil, 0, err
			}
			obj.Vertices = make([][3]float64, 0, reserve(n))
			for i := 0; i < n; i++ {
				line, ok := p.next()
				if !ok {
					return nil, 0, p.eof()
				}
				var v [3]float64
				if err := p.floats(strings.Fields(line), v[:]); err != nil {
					return nil, 0, err
				}
				obj.Vertices = append(obj.Vertices, v)
			}
		case "numsurf":
			n, err := p.count(args)
			if err != nil {
				return nil, 0, err
			}
			obj.Surfaces = make([]Surface, 0, reserve(n))
			for i := 0; i < n; i++ {
				s, err := p.parseSurface()
				if err != nil {
					return nil, 0, err
				}
				obj.Surfaces = append(obj.Surfaces, s)
			}
		case "data":
			if _, err := p.count(args); err != nil {
				return nil, 0, err
			}
			if _, ok := p.next(); !ok {
				return nil, 0, p.eof()
			}
		case "texture", "texrep", "texoff", "crease", "url", "subdiv", "shader":
		case "kids":
			n, err := p.count(args)
			if err != nil {
				return nil, 0, err
			}
			return obj, n, nil
		default:
			return nil, 0, p.malformed("unknown object record %q", tokens[0])
		}
	}
}

func (p *parser) parseSurface() (Surface, error) {
	var s Surface

	line, ok := p.next()
	if !ok {
		return s, p.eof()
	}
	tokens := tokenize(line)
	if tokens[0] != "SURF" || len(tokens) < 2 {
		return s, p.malformed("expected SURF, got %q", line)
	}
	flags, err := strconv.ParseUint(tokens[1], 0, 32)
	if err != nil {
		return s, p.malformed("bad surface flags %q", tokens[1])
	}
	s.Flags = uint32(flags)

	for {
		line, ok := p.next()
		if !ok {
			return s, p.eof()
		}
		tokens := tokenize(line)
		switch tokens[0] {
		case "mat":
			n, err := p.count(tokens[1:])
			if err != nil {
				return s, err
			}
			s.Mat = n
		case "refs":
			n, err := p.count(tokens[1:])
			if err != nil {
				return s, err
			}
			s.Refs = make([]Ref, 0, reserve(n))
			for i := 0; i < n; i++ {
				line, ok := p.next()
				if !ok {
					return s, p.eof()
				}
				fields := strings.Fields(line)
				if len(fields) != 3 {
					return s, p.malformed("expected 'index u v', got %q", line)
				}
				idx, err := strconv.Atoi(fields[0])
				if err != nil {
					return s, p.malformed("bad vertex index %q", fields[0])
				}
				var uv [2]float64
				if err := p.floats(fields[1:], uv[:]); err != nil {
					return s, err
				}
				s.Refs = append(s.Refs, Ref{Index: idx, U: uv[0], V: uv[1]})
			}
			return s, nil
		default:
			return s, p.malformed("unexpected %q in surface", tokens[0])
		}
	}
}

// floats parses len(dst) numbers from the front of args.
func (p *parser) floats(args []string, dst []float64) error {
	if len(args) < len(dst) {
		return p.malformed("expected %d numbers, got %d", len(dst), len(args))
	}
	for i := range dst {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return p.malformed("bad number %q", args[i])
		}
		dst[i] = v
	}
	return nil
}

// maxReserve caps capacity reserved from a count record. Counts come from
// the file, so slices grow past this only as records actually arrive.
const maxReserve = 1 << 16

func reserve(n int) int {
	return min(n, maxReserve)
}

func (p *parser) count(args []string) (int, error) {
	if len(args) < 1 {
		return 0, p.malformed("missing count")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, p.malformed("bad count %q", args[0])
	}
	return n, nil
}

// tokenize splits a record on whitespace. Double-quoted strings form one
// token with the quotes removed.
func tokenize(line string) []string {
	var tokens []string
	for {
		line = strings.TrimLeft(line, " \t")
		if line == "" {
			return tokens
		}
		if line[0] == '"' {
			end := strings.IndexByte(line[1:], '"')
			if end < 0 {
				return append(tokens, line[1:])
			}
			tokens = append(tokens, line[1:end+1])
			line = line[end+2:]
			continue
		}
		end := strings.IndexAny(line, " \t")
		if end < 0 {
			return append(tokens, line)
		}
		tokens = append(tokens, line[:end])
		line = line[end:]
	}
}
