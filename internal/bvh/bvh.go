// Package bvh implements a bounding interval hierarchy over triangles for
// nearest point queries and ray casting.
package bvh

import (
	"math"
	"sort"

	"github.com/soypat/railkit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	leaf = iota
	xClip
	yClip
	zClip
)

// leafSize is the most triangles a leaf holds.
const leafSize = 4

// node is a leaf holding triangles [start,end) of the tree order, or an
// inner node whose children are at child and child+1. An inner node's
// left child lies below leftClip and its right child above rightClip
// along the clip axis.
type node struct {
	flags               int
	child               int
	start, end          int
	leftClip, rightClip float64
}

func (n *node) isLeaf() bool { return n.flags == leaf }

// Tree is a bounding interval hierarchy over a triangle soup.
type Tree struct {
	tris  []d3.Triangle
	index []int // original index of tris[i].
	nodes []node
	bb    d3.Box
}

// Hit is a ray crossing.
type Hit struct {
	T     float64
	Index int // index of the triangle as passed to New.
}

// New builds a tree over tris. The slice is not retained.
func New(tris []d3.Triangle) *Tree {
	t := &Tree{
		tris:  append([]d3.Triangle(nil), tris...),
		index: make([]int, len(tris)),
		bb:    d3.EmptyBox(),
	}
	centroids := make([]r3.Vec, len(tris))
	for i, tri := range tris {
		t.index[i] = i
		centroids[i] = tri.Centroid()
		for _, v := range tri {
			t.bb = t.bb.Include(v)
		}
	}
	if len(tris) == 0 {
		t.bb = d3.Box{}
	}
	t.nodes = make([]node, 1, 2*len(tris)/leafSize+1)
	t.subdivide(0, 0, len(tris), centroids, t.bb)
	return t
}

// Len returns the number of triangles in the tree.
func (t *Tree) Len() int { return len(t.tris) }

// Bounds returns the bounding box of all triangles.
func (t *Tree) Bounds() d3.Box { return t.bb }

// subdivide splits triangles [start,end) at the median centroid along the
// longest axis of bb.
func (t *Tree) subdivide(idx, start, end int, centroids []r3.Vec, bb d3.Box) {
	if end-start <= leafSize {
		t.nodes[idx] = node{flags: leaf, start: start, end: end}
		return
	}
	dims := bb.Size()
	clip := xClip
	switch {
	case dims.X >= dims.Y && dims.X >= dims.Z:
		clip = xClip
	case dims.Y >= dims.Z:
		clip = yClip
	default:
		clip = zClip
	}
	axis := clip - 1
	sort.Sort(byAxis{t: t, c: centroids, start: start, end: end, axis: axis})

	mid := start + (end-start)/2
	leftBB, rightBB := d3.EmptyBox(), d3.EmptyBox()
	for i := start; i < mid; i++ {
		leftBB = leftBB.Extend(t.tris[i].Bounds())
	}
	for i := mid; i < end; i++ {
		rightBB = rightBB.Extend(t.tris[i].Bounds())
	}
	child := len(t.nodes)
	t.nodes = append(t.nodes, node{}, node{})
	t.subdivide(child, start, mid, centroids, leftBB)
	t.subdivide(child+1, mid, end, centroids, rightBB)
	t.nodes[idx] = node{
		flags:     clip,
		child:     child,
		leftClip:  d3.Component(leftBB.Max, axis),
		rightClip: d3.Component(rightBB.Min, axis),
	}
}

type byAxis struct {
	t          *Tree
	c          []r3.Vec
	start, end int
	axis       int
}

func (s byAxis) Len() int { return s.end - s.start }
func (s byAxis) Less(i, j int) bool {
	return d3.Component(s.c[s.start+i], s.axis) < d3.Component(s.c[s.start+j], s.axis)
}
func (s byAxis) Swap(i, j int) {
	i, j = s.start+i, s.start+j
	s.c[i], s.c[j] = s.c[j], s.c[i]
	s.t.tris[i], s.t.tris[j] = s.t.tris[j], s.t.tris[i]
	s.t.index[i], s.t.index[j] = s.t.index[j], s.t.index[i]
}

// children returns the bounding boxes of an inner node's children.
func (n *node) children(bb d3.Box) (left, right d3.Box) {
	left, right = bb, bb
	switch n.flags {
	case xClip:
		left.Max.X, right.Min.X = n.leftClip, n.rightClip
	case yClip:
		left.Max.Y, right.Min.Y = n.leftClip, n.rightClip
	case zClip:
		left.Max.Z, right.Min.Z = n.leftClip, n.rightClip
	}
	return left, right
}

// Nearest returns the index of the triangle closest to p, the closest
// point on it and the squared distance. index is -1 for an empty tree.
func (t *Tree) Nearest(p r3.Vec) (index int, closest r3.Vec, dist2 float64) {
	best := -1
	dist2 = math.MaxFloat64
	if len(t.tris) > 0 {
		best, closest, dist2 = t.nearest(p, 0, t.bb, best, closest, dist2)
	}
	if best < 0 {
		return -1, r3.Vec{}, math.MaxFloat64
	}
	return t.index[best], closest, dist2
}

func (t *Tree) nearest(p r3.Vec, idx int, bb d3.Box, best int, closest r3.Vec, dist2 float64) (int, r3.Vec, float64) {
	n := &t.nodes[idx]
	if n.isLeaf() {
		for i := n.start; i < n.end; i++ {
			c := t.tris[i].Closest(p)
			if d := r3.Norm2(r3.Sub(p, c)); d < dist2 {
				best, closest, dist2 = i, c, d
			}
		}
		return best, closest, dist2
	}
	// Visit the closer child first so the farther one is usually pruned.
	leftBB, rightBB := n.children(bb)
	leftD, rightD := leftBB.Dist2(p), rightBB.Dist2(p)
	first, second := n.child, n.child+1
	firstBB, secondBB := leftBB, rightBB
	firstD, secondD := leftD, rightD
	if rightD < leftD {
		first, second = second, first
		firstBB, secondBB = secondBB, firstBB
		firstD, secondD = secondD, firstD
	}
	if firstD < dist2 {
		best, closest, dist2 = t.nearest(p, first, firstBB, best, closest, dist2)
	}
	if secondD < dist2 {
		best, closest, dist2 = t.nearest(p, second, secondBB, best, closest, dist2)
	}
	return best, closest, dist2
}

// Raycast returns every crossing of the ray o + t*d with t > 0, in no
// particular order.
func (t *Tree) Raycast(o, d r3.Vec) []Hit {
	if len(t.tris) == 0 {
		return nil
	}
	return t.raycast(o, d, 0, t.bb, nil)
}

func (t *Tree) raycast(o, d r3.Vec, idx int, bb d3.Box, hits []Hit) []Hit {
	if _, _, ok := bb.Enlarge(1e-9).IntersectRay(o, d); !ok {
		return hits
	}
	n := &t.nodes[idx]
	if n.isLeaf() {
		for i := n.start; i < n.end; i++ {
			if tt, ok := t.tris[i].IntersectRay(o, d); ok && tt > 0 {
				hits = append(hits, Hit{T: tt, Index: t.index[i]})
			}
		}
		return hits
	}
	leftBB, rightBB := n.children(bb)
	hits = t.raycast(o, d, n.child, leftBB, hits)
	return t.raycast(o, d, n.child+1, rightBB, hits)
}

// Crossings counts the distinct surfaces the ray o + t*d crosses. Hits
// closer than tol along the ray, such as a crossing through a shared edge
// or through coincident faces, count once.
func (t *Tree) Crossings(o, d r3.Vec, tol float64) int {
	hits := t.Raycast(o, d)
	if len(hits) == 0 {
		return 0
	}
	ts := make([]float64, len(hits))
	for i, h := range hits {
		ts[i] = h.T
	}
	sort.Float64s(ts)
	count := 1
	last := ts[0]
	for _, v := range ts[1:] {
		if v-last > tol {
			count++
		}
		last = v
	}
	return count
}
