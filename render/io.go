package render

import (
	"context"
	"io"

	"github.com/soypat/railkit/internal/d3"
)

// RenderAll reads the full contents of a Renderer and returns the slice read.
// It does not return error on io.EOF, like the io.ReadAll implementation.
// The context is checked between batches.
func RenderAll(ctx context.Context, r Renderer) ([]d3.Triangle, error) {
	var err error
	var nt int
	result := make([]d3.Triangle, 0, 1<<12)
	buf := make([]d3.Triangle, 1024)
	for {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		nt, err = r.ReadTriangles(buf)
		// Triangles returned alongside io.EOF are part of the model.
		result = append(result, buf[:nt]...)
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}

type triangle3Buffer struct {
	buf []d3.Triangle
}

// Read reads from this buffer.
func (b *triangle3Buffer) Read(t []d3.Triangle) int {
	n := copy(t, b.buf)
	b.buf = b.buf[n:]
	return n
}

// Write appends triangles to this buffer.
func (b *triangle3Buffer) Write(t []d3.Triangle) int {
	b.buf = append(b.buf, t...)
	return len(t)
}

func (b *triangle3Buffer) Len() int { return len(b.buf) }
