package bvh

import (
	"math"
	"math/rand"
	"testing"

	"github.com/soypat/railkit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// cube returns the 12 outward facing triangles of the cube [0,1]^3.
func cube() []d3.Triangle {
	v := func(x, y, z float64) r3.Vec { return r3.Vec{X: x, Y: y, Z: z} }
	quads := [][4]r3.Vec{
		{v(0, 0, 0), v(0, 1, 0), v(1, 1, 0), v(1, 0, 0)}, // -Z
		{v(0, 0, 1), v(1, 0, 1), v(1, 1, 1), v(0, 1, 1)}, // +Z
		{v(0, 0, 0), v(1, 0, 0), v(1, 0, 1), v(0, 0, 1)}, // -Y
		{v(0, 1, 0), v(0, 1, 1), v(1, 1, 1), v(1, 1, 0)}, // +Y
		{v(0, 0, 0), v(0, 0, 1), v(0, 1, 1), v(0, 1, 0)}, // -X
		{v(1, 0, 0), v(1, 1, 0), v(1, 1, 1), v(1, 0, 1)}, // +X
	}
	var tris []d3.Triangle
	for _, q := range quads {
		tris = append(tris, d3.Triangle{q[0], q[1], q[2]}, d3.Triangle{q[0], q[2], q[3]})
	}
	return tris
}

func TestNearestMatchesBruteForce(t *testing.T) {
	tris := cube()
	// Add scattered small triangles so the tree has several levels.
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		o := r3.Vec{X: 3 * rng.Float64(), Y: 3 * rng.Float64(), Z: 3 * rng.Float64()}
		tris = append(tris, d3.Triangle{o, r3.Add(o, r3.Vec{X: .1}), r3.Add(o, r3.Vec{Y: .1})})
	}
	tree := New(tris)
	if tree.Len() != len(tris) {
		t.Fatalf("tree holds %d triangles, want %d", tree.Len(), len(tris))
	}
	for i := 0; i < 500; i++ {
		p := r3.Vec{X: 4*rng.Float64() - .5, Y: 4*rng.Float64() - .5, Z: 4*rng.Float64() - .5}
		want := math.MaxFloat64
		for _, tri := range tris {
			want = math.Min(want, r3.Norm2(r3.Sub(p, tri.Closest(p))))
		}
		idx, closest, got := tree.Nearest(p)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("nearest to %v: got dist² %g, want %g", p, got, want)
		}
		if d := r3.Norm2(r3.Sub(p, tris[idx].Closest(p))); math.Abs(d-got) > 1e-12 {
			t.Errorf("returned index %d does not match distance", idx)
		}
		if math.Abs(r3.Norm2(r3.Sub(p, closest))-got) > 1e-12 {
			t.Errorf("closest point inconsistent with distance")
		}
	}
}

func TestCrossings(t *testing.T) {
	tree := New(cube())
	dir := r3.Unit(r3.Vec{X: 0.5377, Y: 0.3112, Z: 0.7831})
	for _, test := range []struct {
		o    r3.Vec
		want int
	}{
		{r3.Vec{X: .5, Y: .5, Z: .5}, 1},
		{r3.Vec{X: .2, Y: .7, Z: .1}, 1},
		{r3.Vec{X: -1, Y: -1, Z: -1}, 2},
		{r3.Vec{X: 2, Y: 2, Z: 2}, 0},
	} {
		if got := tree.Crossings(test.o, dir, 1e-6); got != test.want {
			t.Errorf("crossings from %v: got %d, want %d", test.o, got, test.want)
		}
	}
	// A ray through the diagonal of a face hits both of its triangles at
	// the same distance, which counts once.
	hits := tree.Raycast(r3.Vec{X: .5, Y: .5, Z: -1}, r3.Vec{Z: 1})
	if len(hits) < 2 {
		t.Fatalf("expected hits through both faces, got %d", len(hits))
	}
	if got := tree.Crossings(r3.Vec{X: .5, Y: .5, Z: -1}, r3.Vec{Z: 1}, 1e-6); got != 2 {
		t.Errorf("diagonal crossings: got %d, want 2", got)
	}
}

func TestEmptyTree(t *testing.T) {
	tree := New(nil)
	if idx, _, _ := tree.Nearest(r3.Vec{}); idx != -1 {
		t.Errorf("empty tree nearest index %d", idx)
	}
	if n := tree.Crossings(r3.Vec{}, r3.Vec{Z: 1}, 1e-6); n != 0 {
		t.Errorf("empty tree crossings %d", n)
	}
}
