package preview

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/railkit/solid"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures a snapshot camera. Meshes are fit into a bi-unit cube
// centered at the origin before drawing, so positions are in that space.
type View struct {
	// Eye is the camera position.
	Eye r3.Vec
	// LookAt is the point at the image center.
	LookAt r3.Vec
	// Up is the image's up direction.
	Up r3.Vec
	// Near and Far clip planes.
	Near, Far float64
	// FOV is the vertical field of view in degrees.
	FOV float64
	// Width and Height of the output image in pixels.
	Width, Height int
	// Supersample renders at this multiple of the output size and then
	// downsamples for antialiasing.
	Supersample int
	// Color and Background are hex colors such as "#468966".
	Color, Background string
}

// DefaultView is an isometric view from above.
func DefaultView() View {
	return View{
		Eye:         r3.Vec{X: 2.4, Y: 2.4, Z: 2.4},
		Up:          r3.Vec{Z: 1},
		Near:        1,
		Far:         10,
		FOV:         30,
		Width:       640,
		Height:      480,
		Supersample: 2,
		Color:       "#468966",
		Background:  "#FFF8E3",
	}
}

// Snapshot draws m, placed by its World transform, with Phong shading.
func Snapshot(m *solid.Mesh, view View) (image.Image, error) {
	if m == nil || len(m.Triangles) == 0 {
		return nil, solid.ErrEmptyMesh
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("snapshot size must be positive")
	}
	scale := max(view.Supersample, 1)
	tris := make([]*fauxgl.Triangle, len(m.Triangles))
	for i := range m.Triangles {
		t := m.Triangle(i)
		tris[i] = fauxgl.NewTriangleForPoints(
			vec(m.World.Transform(t[0])),
			vec(m.World.Transform(t[1])),
			vec(m.World.Transform(t[2])),
		)
	}
	mesh := fauxgl.NewTriangleMesh(tris)
	mesh.BiUnitCube()

	var (
		eye    = vec(view.Eye)
		center = vec(view.LookAt)
		up     = vec(view.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)
	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor(view.Background))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(view.FOV, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(view.Color)
	context.Shader = shader
	context.DrawMesh(mesh)

	img := context.Image()
	if scale > 1 {
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// SavePNG writes img to a PNG file.
func SavePNG(path string, img image.Image) error {
	return fauxgl.SavePNG(path, img)
}

func vec(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }
