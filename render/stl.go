package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/railkit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// stlHeaderSize is the 80 byte comment plus the uint32 triangle count.
	stlHeaderSize = 84
	// stlTriangleSize is the size of one facet record.
	stlTriangleSize = 50
)

// ErrEmptyModel is returned when writing an STL without triangles.
var ErrEmptyModel = errors.New("empty triangle slice")

// STLSize returns the size in bytes of a binary STL holding n triangles.
func STLSize(n int) int { return stlHeaderSize + stlTriangleSize*n }

// CreateSTL writes model to a new binary STL file at path.
func CreateSTL(path string, model []d3.Triangle) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err = WriteSTL(file, model); err != nil {
		return err
	}
	return file.Close()
}

// WriteSTL writes model triangles to a writer in binary STL file format with
// face normals computed from the vertices. It returns the bytes written.
func WriteSTL(w io.Writer, model []d3.Triangle) (int, error) {
	if len(model) == 0 {
		return 0, ErrEmptyModel
	}
	bw := bufio.NewWriterSize(w, stlTriangleSize*trianglesInBuffer)
	header := stlHeader{
		Count: uint32(len(model)),
	}
	copy(header.Comment[:], "railkit binary STL")
	if err := binary.Write(bw, binary.LittleEndian, &header); err != nil {
		return 0, err
	}
	written := stlHeaderSize
	var b [stlTriangleSize]byte
	for _, triangle := range model {
		d := newSTLTriangle(triangle)
		d.put(b[:])
		n, err := bw.Write(b[:])
		written += n
		if err != nil {
			return written, err
		}
	}
	if err := bw.Flush(); err != nil {
		return written - bw.Buffered(), err
	}
	return written, nil
}

// stlHeader defines the STL file header.
type stlHeader struct {
	Comment [80]uint8 // Header
	Count   uint32    // Number of triangles
}

const trianglesInBuffer = 1 << 10

// ReadSTL reads a binary STL. Normals stored in the file are checked against
// the vertex winding; a mismatch is reported with ErrNormalMismatch together
// with the triangles read.
func ReadSTL(r io.Reader) ([]d3.Triangle, error) {
	return readBinarySTL(bufio.NewReader(r))
}

func readBinarySTL(r io.Reader) (output []d3.Triangle, readErr error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, errors.New("STL header read failed: " + err.Error())
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf            [stlTriangleSize]byte
		d              stlTriangle
		i              int
		normMismatches int
	)
	defer func() {
		if readErr != nil && !errors.Is(readErr, ErrNormalMismatch) {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i+1, header.Count, readErr)
		}
	}()
	output = make([]d3.Triangle, 0, header.Count)
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			if !errors.Is(err, ErrNormalMismatch) {
				return nil, err
			}
			normMismatches++
			if normMismatches > 10_000 {
				// This may be valid output, so we return the triangles.
				return output, fmt.Errorf("got too many normal vector mismatches (%d)", normMismatches)
			}
			readErr = err
		}
		output = append(output, d.toTriangle())
	}
	// NormalMismatch error validation may be returned.
	// For high resolution models this error may be incorrectly returned.
	return output, readErr
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func newSTLTriangle(t d3.Triangle) (d stlTriangle) {
	d.Normal = to3F32(t.Normal())
	d.Vertex1 = to3F32(t[0])
	d.Vertex2 = to3F32(t[1])
	d.Vertex3 = to3F32(t[2])
	return d
}

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
	// attribute bytes are ignored.
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func to3F32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

// ErrNormalMismatch reports a stored normal that disagrees with the winding
// of its triangle's vertices.
var ErrNormalMismatch = errors.New("triangle normal not approximately equal to calculated normal from vertices")

func (t stlTriangle) validate() error {
	const epsilon = 1e-12
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	if t.degenerate(epsilon) {
		return errors.New("triangle is degenerate")
	}
	if !equalWithin3F32(t.normalFromVertices(), t.Normal, normTol) {
		return ErrNormalMismatch
	}
	return nil
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func (t stlTriangle) normalFromVertices() [3]float32 {
	v1 := r3.Scale(10, r3From3F32(t.Vertex1))
	v2 := r3.Scale(10, r3From3F32(t.Vertex2))
	v3 := r3.Scale(10, r3From3F32(t.Vertex3))
	n := r3.Unit(r3.Cross(r3.Sub(v2, v1), r3.Sub(v3, v1)))
	return to3F32(n)
}

// degenerate returns true if two vertices of the triangle coincide.
func (t stlTriangle) degenerate(tol float32) bool {
	return equalWithin3F32(t.Vertex1, t.Vertex2, tol) ||
		equalWithin3F32(t.Vertex2, t.Vertex3, tol) ||
		equalWithin3F32(t.Vertex3, t.Vertex1, tol)
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func (d stlTriangle) toTriangle() d3.Triangle {
	return d3.Triangle{
		r3From3F32(d.Vertex1),
		r3From3F32(d.Vertex2),
		r3From3F32(d.Vertex3),
	}
}
