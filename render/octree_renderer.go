package render

import (
	"io"
	"math"

	"github.com/soypat/railkit/internal/d3"
	"github.com/soypat/railkit/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// marchingTetraMaxTriangles is the most triangles a cube can yield: six
// tetrahedra with at most two triangles each.
const marchingTetraMaxTriangles = 12

// Octree renders an SDF3 with marching tetrahedra, sampling space with an
// octree so that cubes far from the surface are discarded early.
type Octree struct {
	dc        dc3
	todo      []cube
	unwritten triangle3Buffer
	cells     int
}

type cube struct {
	v3i      // origin of cube as integers
	n   uint // level of cube, size = 1 << n
}

// v3i is an integer lattice point of the octree.
type v3i [3]int

func (a v3i) add(b v3i) v3i { return v3i{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }

func (a v3i) addScalar(s int) v3i { return v3i{a[0] + s, a[1] + s, a[2] + s} }

func (a v3i) vec() r3.Vec { return r3.Vec{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])} }

// NewOctreeRenderer returns a marching tetrahedra renderer that splits the
// longest side of the SDF3's bounds into meshCells cells.
// The todo cube slice is consumed from the front and only released when the
// renderer is garbage collected.
func NewOctreeRenderer(s sdf.SDF3, meshCells int) *Octree {
	if meshCells < 2 {
		panic("meshCells must be 2 or larger")
	}
	// Scale the bounding box about the center to make sure the boundaries
	// aren't on the object surface.
	bb := d3.Box(s.Bounds())
	bb = bb.ScaleAboutCenter(1.01)
	longAxis := d3.Max(bb.Size())
	// We want to test the smallest cube (side == resolution) for emptiness
	// so the level = 0 cube is at half resolution.
	resolution := 0.5 * longAxis / float64(meshCells)

	// how many cube levels for the octree?
	levels := uint(math.Ceil(math.Log2(longAxis/resolution))) + 1

	// Calculate theoretical max amount of cubes
	divisions := r3.Scale(1/resolution, bb.Size())
	maxCubes := int(divisions.X) * int(divisions.Y) * int(divisions.Z)

	// Allocate a reasonable size for cube slice
	cubes := make([]cube, 1, max(1, maxCubes/64))
	cubes[0] = cube{v3i{0, 0, 0}, levels - 1} // process the octree, start at the top level
	return &Octree{
		dc:        *newDc3(s, bb.Min, resolution, levels),
		unwritten: triangle3Buffer{buf: make([]d3.Triangle, 0, 1024)},
		todo:      cubes,
		cells:     meshCells,
	}
}

// CellsFor returns the meshCells argument that gives cells of the given
// size over the bounds of s.
func CellsFor(s sdf.SDF3, cellSize float64) int {
	if cellSize <= 0 {
		panic("cellSize <= 0")
	}
	long := d3.Max(d3.Box(s.Bounds()).ScaleAboutCenter(1.01).Size())
	return max(2, int(math.Ceil(long/cellSize)))
}

// Cells returns the number of cells along the longest side.
func (oc *Octree) Cells() int { return oc.cells }

// ReadTriangles writes triangles rendered from the model into the argument buffer.
// returns number of triangles written and an error if present.
func (oc *Octree) ReadTriangles(dst []d3.Triangle) (n int, err error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	if oc.unwritten.Len() > 0 {
		n += oc.unwritten.Read(dst[n:])
		if n == len(dst) {
			return n, nil
		}
	}
	if len(oc.todo) == 0 && oc.unwritten.Len() == 0 {
		// Done rendering model.
		return n, io.EOF
	}
	n += oc.readTriangles(dst[n:])
	return n, nil
}

// readTriangles processes cubes until dst is full or no work remains and
// returns number of triangles written.
func (oc *Octree) readTriangles(dst []d3.Triangle) (n int) {
	cubesProcessed := 0
	var newCubes []cube
	for _, cube := range oc.todo {
		if n == len(dst) {
			// Finished writing all the buffer
			break
		}
		if n+marchingTetraMaxTriangles > len(dst) {
			// Not enough room in buffer to write all triangles that could be found in the cube.
			var tmp [marchingTetraMaxTriangles]d3.Triangle
			tri, cubes := oc.processCube(tmp[:], cube)
			oc.unwritten.Write(tmp[:tri])
			newCubes = append(newCubes, cubes...)
			cubesProcessed++
			break
		}
		tri, cubes := oc.processCube(dst[n:], cube)
		newCubes = append(newCubes, cubes...)
		cubesProcessed++
		n += tri
	}
	oc.todo = append(oc.todo, newCubes...)
	oc.todo = oc.todo[cubesProcessed:]
	return n
}

// Process a cube. Generate triangles, or more cubes.
func (oc *Octree) processCube(dst []d3.Triangle, c cube) (writtenTriangles int, newCubes []cube) {
	if c.n == 1 {
		// this cube is at the required resolution
		var corners [8]r3.Vec
		var values [8]float64
		for i, off := range cubeCorners {
			corners[i], values[i] = oc.dc.Evaluate(c.add(off))
		}
		for _, tet := range kuhnTetrahedra {
			writtenTriangles += marchTetrahedron(dst[writtenTriangles:],
				[4]r3.Vec{corners[tet[0]], corners[tet[1]], corners[tet[2]], corners[tet[3]]},
				[4]float64{values[tet[0]], values[tet[1]], values[tet[2]], values[tet[3]]},
			)
		}
		return writtenTriangles, nil
	}
	// process the sub cubes
	n := c.n - 1
	s := 1 << n
	subCubes := [8]cube{
		{c.add(v3i{0, 0, 0}), n},
		{c.add(v3i{s, 0, 0}), n},
		{c.add(v3i{s, s, 0}), n},
		{c.add(v3i{0, s, 0}), n},
		{c.add(v3i{0, 0, s}), n},
		{c.add(v3i{s, 0, s}), n},
		{c.add(v3i{s, s, s}), n},
		{c.add(v3i{0, s, s}), n},
	}
	// Eliminate empty cubes.
	for _, candidate := range subCubes {
		if !oc.dc.IsEmpty(&candidate) {
			newCubes = append(newCubes, candidate)
		}
	}
	return 0, newCubes
}

// cubeCorners are the lattice offsets of a level 1 cube's corners.
var cubeCorners = [8]v3i{
	{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0},
	{0, 0, 2}, {2, 0, 2}, {2, 2, 2}, {0, 2, 2},
}

// kuhnTetrahedra splits a cube into six tetrahedra sharing the 0-6 diagonal.
// Every cube is split the same way so shared faces get the same diagonal and
// the output is watertight.
var kuhnTetrahedra = [6][4]int{
	{0, 1, 2, 6},
	{0, 2, 3, 6},
	{0, 3, 7, 6},
	{0, 7, 4, 6},
	{0, 4, 5, 6},
	{0, 5, 1, 6},
}

// marchTetrahedron writes the zero level triangles of a tetrahedron to dst,
// facing from negative to positive values.
func marchTetrahedron(dst []d3.Triangle, p [4]r3.Vec, v [4]float64) int {
	var in, out [4]int
	var nin, nout int
	for i := range v {
		if v[i] < 0 {
			in[nin] = i
			nin++
		} else {
			out[nout] = i
			nout++
		}
	}
	if nin == 0 || nout == 0 {
		return 0
	}
	edge := func(a, b int) r3.Vec {
		t := v[a] / (v[a] - v[b])
		return r3.Add(p[a], r3.Scale(t, r3.Sub(p[b], p[a])))
	}
	var tris [2]d3.Triangle
	var nt int
	switch nin {
	case 1:
		a := in[0]
		tris[0] = d3.Triangle{edge(a, out[0]), edge(a, out[1]), edge(a, out[2])}
		nt = 1
	case 3:
		b := out[0]
		tris[0] = d3.Triangle{edge(in[0], b), edge(in[1], b), edge(in[2], b)}
		nt = 1
	case 2:
		a, b := in[0], in[1]
		c, e := out[0], out[1]
		ac, ae, be, bc := edge(a, c), edge(a, e), edge(b, e), edge(b, c)
		tris[0] = d3.Triangle{ac, ae, be}
		tris[1] = d3.Triangle{ac, be, bc}
		nt = 2
	}
	// The field increases along outward, from the inside vertices' mean
	// toward the outside vertices' mean.
	var cin, cout r3.Vec
	for _, i := range in[:nin] {
		cin = r3.Add(cin, p[i])
	}
	for _, i := range out[:nout] {
		cout = r3.Add(cout, p[i])
	}
	outward := r3.Sub(r3.Scale(1/float64(nout), cout), r3.Scale(1/float64(nin), cin))
	written := 0
	for _, t := range tris[:nt] {
		n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
		if n == (r3.Vec{}) {
			continue // Surface touches a vertex or an edge.
		}
		if r3.Dot(n, outward) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		dst[written] = t
		written++
	}
	return written
}

// dc3 implements a 3 dimensional distance cache. evaluates the SDF3 via a distance cache to avoid repeated evaluations.
// Experimentally about 2/3 of lookups get a hit, and the overall speedup
// is about 2x a non-cached evaluation.
type dc3 struct {
	cache      map[v3i]float64 // cache of distances
	origin     r3.Vec          // origin of the overall bounding cube
	resolution float64         // size of smallest octree cube
	hdiag      []float64       // lookup table of cube half diagonals
	s          sdf.SDF3        // the SDF3 to be rendered
}

// Evaluate returns the position of a lattice point and the SDF3 value there.
func (dc *dc3) Evaluate(vi v3i) (r3.Vec, float64) {
	v := r3.Add(dc.origin, r3.Scale(dc.resolution, vi.vec()))
	if dist, found := dc.cache[vi]; found {
		return v, dist
	}
	dist := dc.s.Evaluate(v)
	dc.cache[vi] = dist
	return v, dist
}

// IsEmpty returns true if the cube contains no SDF surface
func (dc *dc3) IsEmpty(c *cube) bool {
	// evaluate the SDF3 at the center of the cube
	s := 1 << (c.n - 1) // half side
	_, d := dc.Evaluate(c.addScalar(s))
	// compare to the center/corner distance
	return math.Abs(d) >= dc.hdiag[c.n]
}

func newDc3(s sdf.SDF3, origin r3.Vec, resolution float64, n uint) *dc3 {
	if n >= 64 {
		panic("size of n must be less than size of word for hdiag generation")
	}
	dc := dc3{
		origin:     origin,
		resolution: resolution,
		hdiag:      make([]float64, n),
		s:          s,
		cache:      make(map[v3i]float64),
	}
	// build a lut for cube half diagonal lengths
	for i := range dc.hdiag {
		si := 1 << uint(i)
		s := float64(si) * dc.resolution
		dc.hdiag[i] = 0.5 * math.Sqrt(3.0*s*s)
	}
	return &dc
}
