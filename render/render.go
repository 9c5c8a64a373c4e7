// Package render meshes signed distance functions and writes triangle
// meshes as binary STL.
package render

import "github.com/soypat/railkit/internal/d3"

// Renderer produces the triangles of a model in batches.
type Renderer interface {
	// ReadTriangles writes triangles into dst and returns how many were
	// written. It returns io.EOF once the model is exhausted; the final
	// batch may come with io.EOF.
	ReadTriangles(dst []d3.Triangle) (int, error)
}
