// Package solid sweeps profiles along paths into triangle meshes and
// places the resulting rail, cover and connector solids for printing.
package solid

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/soypat/railkit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrNonFinite is returned when a mesh holds a NaN or infinite coordinate.
	ErrNonFinite = errors.New("non-finite vertex coordinate")
	// ErrEmptyMesh is returned when an operation yields no triangles.
	ErrEmptyMesh = errors.New("empty mesh")
)

// Role identifies which part a mesh is.
type Role int

const (
	RoleRail Role = iota
	RoleCover
	RoleConnector
)

// Roles lists every role in export order.
var Roles = []Role{RoleRail, RoleCover, RoleConnector}

func (r Role) String() string {
	switch r {
	case RoleRail:
		return "rail"
	case RoleCover:
		return "cover"
	case RoleConnector:
		return "connector"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole parses a role name as returned by String.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(strings.TrimSpace(s), r.String()) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// Mode tells how a mesh was produced, which decides whether it needs
// winding repair before export.
type Mode int

const (
	// Stitched meshes come from sweeps and hand built solids. Their winding is
	// repaired before export.
	Stitched Mode = iota
	// Boolean meshes come out of the SDF kernel with consistent winding.
	Boolean
)

func (m Mode) String() string {
	if m == Boolean {
		return "boolean"
	}
	return "stitched"
}

// Mesh is an indexed triangle mesh. Triangles are counter-clockwise when
// seen from outside. World is a placement not yet applied to Vertices.
type Mesh struct {
	Vertices  []r3.Vec
	Triangles [][3]int
	// Normals holds per vertex normals. It may be nil.
	Normals []r3.Vec
	Role    Role
	Mode    Mode
	World   d3.Transform
}

// Triangle returns the i'th triangle's vertices.
func (m *Mesh) Triangle(i int) d3.Triangle {
	t := m.Triangles[i]
	return d3.Triangle{m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]}
}

// TriangleSoup returns every triangle by value.
func (m *Mesh) TriangleSoup() []d3.Triangle {
	tris := make([]d3.Triangle, len(m.Triangles))
	for i := range m.Triangles {
		tris[i] = m.Triangle(i)
	}
	return tris
}

// Bounds returns the bounding box of the vertices, ignoring World.
func (m *Mesh) Bounds() d3.Box {
	if len(m.Vertices) == 0 {
		return d3.Box{}
	}
	return d3.BoxOf(m.Vertices)
}

// WorldBounds returns the bounding box of the vertices placed by World.
func (m *Mesh) WorldBounds() d3.Box {
	bb := d3.EmptyBox()
	for _, v := range m.Vertices {
		bb = bb.Include(m.World.Transform(v))
	}
	return bb
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Vertices = append([]r3.Vec(nil), m.Vertices...)
	c.Triangles = append([][3]int(nil), m.Triangles...)
	if m.Normals != nil {
		c.Normals = append([]r3.Vec(nil), m.Normals...)
	}
	return &c
}

// Apply transforms the vertices in place. Mirroring transforms reverse
// the triangle winding so the mesh stays outward facing.
func (m *Mesh) Apply(t d3.Transform) {
	for i, v := range m.Vertices {
		m.Vertices[i] = t.Transform(v)
	}
	if t.Det() < 0 {
		for i := range m.Triangles {
			m.Triangles[i][1], m.Triangles[i][2] = m.Triangles[i][2], m.Triangles[i][1]
		}
	}
	if m.Normals != nil {
		m.ComputeNormals()
	}
}

// Bake applies World to the vertices and resets it to identity.
func (m *Mesh) Bake() {
	if m.World == (d3.Transform{}) {
		return
	}
	m.Apply(m.World)
	m.World = d3.Transform{}
}

// Release drops the mesh buffers.
func (m *Mesh) Release() {
	m.Vertices = nil
	m.Triangles = nil
	m.Normals = nil
}

// Volume returns the signed volume enclosed by the mesh. It is positive
// for a closed outward facing mesh.
func (m *Mesh) Volume() float64 {
	var v float64
	for i := range m.Triangles {
		t := m.Triangle(i)
		v += r3.Dot(t[0], r3.Cross(t[1], t[2]))
	}
	return v / 6
}

// ComputeNormals sets per vertex normals as the area weighted sum of the
// adjacent face normals.
func (m *Mesh) ComputeNormals() {
	m.Normals = make([]r3.Vec, len(m.Vertices))
	for _, t := range m.Triangles {
		a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		for _, idx := range t {
			m.Normals[idx] = r3.Add(m.Normals[idx], n)
		}
	}
	for i, n := range m.Normals {
		if l := r3.Norm(n); l > 0 {
			m.Normals[i] = r3.Scale(1/l, n)
		}
	}
}

// CheckFinite returns ErrNonFinite if any vertex has a NaN or infinite
// coordinate.
func CheckFinite(m *Mesh) error {
	for i, v := range m.Vertices {
		if !d3.IsFinite(v) {
			return fmt.Errorf("%s vertex %d %v: %w", m.Role, i, v, ErrNonFinite)
		}
	}
	return nil
}

// FromTriangles builds an indexed mesh from a triangle soup, sharing
// vertices that fall in the same tol sized cell. Triangles that collapse
// onto fewer than three distinct vertices are dropped.
func FromTriangles(tris []d3.Triangle, tol float64) *Mesh {
	if tol <= 0 {
		tol = 1e-9
	}
	m := &Mesh{Triangles: make([][3]int, 0, len(tris))}
	cache := make(map[[3]int64]int)
	htol := 0.5 * tol
	key := func(v r3.Vec) [3]int64 {
		return [3]int64{
			int64(math.Floor((v.X + htol) / tol)),
			int64(math.Floor((v.Y + htol) / tol)),
			int64(math.Floor((v.Z + htol) / tol)),
		}
	}
	for _, t := range tris {
		keys := [3][3]int64{key(t[0]), key(t[1]), key(t[2])}
		if keys[0] == keys[1] || keys[1] == keys[2] || keys[0] == keys[2] {
			continue
		}
		var tri [3]int
		for j, k := range keys {
			idx, ok := cache[k]
			if !ok {
				idx = len(m.Vertices)
				cache[k] = idx
				m.Vertices = append(m.Vertices, t[j])
			}
			tri[j] = idx
		}
		m.Triangles = append(m.Triangles, tri)
	}
	return m
}
