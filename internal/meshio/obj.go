// Package meshio loads Wavefront OBJ geometry into interleaved vertex and
// index arrays.
package meshio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Stride is the byte size of one interleaved vertex:
// position xyz, normal xyz, texcoord uv, all float32.
const Stride = 8 * 4

// ErrNoGeometry is returned when a file has no faces.
var ErrNoGeometry = errors.New("meshio: no faces")

// Group is a run of indices drawn with one material.
type Group struct {
	Name     string
	Material int
	Start    int
	Count    int
}

// Mesh is triangulated OBJ geometry.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
	Groups   []Group
}

// VertexCount returns the number of interleaved vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) / 8 }

// VertexBytes returns the vertices in little-endian order.
func (m *Mesh) VertexBytes() []byte {
	out := make([]byte, len(m.Vertices)*4)
	for i, v := range m.Vertices {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// Wide reports whether indices need 32 bits.
func (m *Mesh) Wide() bool { return m.VertexCount() > math.MaxUint16 }

// IndexBytes returns indices as uint16 unless Wide, little-endian.
func (m *Mesh) IndexBytes() []byte {
	if m.Wide() {
		out := make([]byte, len(m.Indices)*4)
		for i, v := range m.Indices {
			binary.LittleEndian.PutUint32(out[i*4:], v)
		}
		return out
	}
	out := make([]byte, len(m.Indices)*2)
	for i, v := range m.Indices {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

type corner struct{ v, vt, vn int }

type parser struct {
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32

	mesh      Mesh
	seen      map[corner]uint32
	materials map[string]int
	group     string
	material  int
}

// ParseOBJ reads OBJ text. Polygons are fan-triangulated; missing normals
// and texcoords are zero. Material libraries are not loaded: each distinct
// usemtl name gets the next material index.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	p := &parser{seen: make(map[corner]uint32), materials: make(map[string]int)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		if text == "" {
			continue
		}
		if err := p.line(strings.Fields(text)); err != nil {
			return nil, fmt.Errorf("meshio: line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("meshio: read: %w", err)
	}
	if len(p.mesh.Indices) == 0 {
		return nil, ErrNoGeometry
	}
	p.closeGroup()
	return &p.mesh, nil
}

func (p *parser) line(f []string) error {
	switch f[0] {
	case "v":
		v, err := floats(f[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, [3]float32{v[0], v[1], v[2]})
	case "vn":
		v, err := floats(f[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, [3]float32{v[0], v[1], v[2]})
	case "vt":
		v, err := floats(f[1:], 2)
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, [2]float32{v[0], v[1]})
	case "f":
		return p.face(f[1:])
	case "o", "g":
		p.closeGroup()
		p.group = strings.Join(f[1:], " ")
	case "usemtl":
		p.closeGroup()
		name := strings.Join(f[1:], " ")
		idx, ok := p.materials[name]
		if !ok {
			idx = len(p.materials)
			p.materials[name] = idx
		}
		p.material = idx
	}
	// mtllib, s, l, p and unknown statements are ignored.
	return nil
}

func (p *parser) closeGroup() {
	start := 0
	if n := len(p.mesh.Groups); n > 0 {
		last := p.mesh.Groups[n-1]
		start = last.Start + last.Count
	}
	if count := len(p.mesh.Indices) - start; count > 0 {
		p.mesh.Groups = append(p.mesh.Groups, Group{
			Name: p.group, Material: p.material, Start: start, Count: count,
		})
	}
}

func (p *parser) face(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("face with %d vertices", len(refs))
	}
	idx := make([]uint32, len(refs))
	for i, ref := range refs {
		c, err := p.corner(ref)
		if err != nil {
			return err
		}
		idx[i] = p.vertex(c)
	}
	for i := 1; i+1 < len(idx); i++ {
		p.mesh.Indices = append(p.mesh.Indices, idx[0], idx[i], idx[i+1])
	}
	return nil
}

func (p *parser) corner(ref string) (corner, error) {
	parts := strings.Split(ref, "/")
	var c corner
	var err error
	if c.v, err = resolve(parts[0], len(p.positions)); err != nil || c.v < 0 {
		return c, fmt.Errorf("bad vertex reference %q", ref)
	}
	c.vt, c.vn = -1, -1
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolve(parts[1], len(p.uvs)); err != nil {
			return c, fmt.Errorf("bad texcoord reference %q", ref)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolve(parts[2], len(p.normals)); err != nil {
			return c, fmt.Errorf("bad normal reference %q", ref)
		}
	}
	return c, nil
}

// resolve turns a 1-based or negative relative OBJ index into a 0-based one.
func resolve(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return -1, err
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return -1, fmt.Errorf("index %d out of range 1..%d", i, n)
}

func (p *parser) vertex(c corner) uint32 {
	if i, ok := p.seen[c]; ok {
		return i
	}
	pos := p.positions[c.v]
	var n [3]float32
	var uv [2]float32
	if c.vn >= 0 {
		n = p.normals[c.vn]
	}
	if c.vt >= 0 {
		uv = p.uvs[c.vt]
	}
	i := uint32(len(p.mesh.Vertices) / 8)
	p.mesh.Vertices = append(p.mesh.Vertices, pos[0], pos[1], pos[2], n[0], n[1], n[2], uv[0], uv[1])
	p.seen[c] = i
	return i
}

func floats(f []string, n int) ([]float32, error) {
	if len(f) < n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(f))
	}
	out := make([]float32, n)
	for i := range out {
		v, err := strconv.ParseFloat(f[i], 32)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f[i])
		}
		out[i] = float32(v)
	}
	return out, nil
}
