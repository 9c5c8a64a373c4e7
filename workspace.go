package railkit

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/soypat/railkit/internal/d3"
	"github.com/soypat/railkit/render"
	"github.com/soypat/railkit/repair"
	"github.com/soypat/railkit/solid"
	"go.uber.org/zap"
)

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the workspace logger. The default discards logs.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.log = l
		}
	}
}

// WithKernel sets the boolean backend used to drill holes.
func WithKernel(k *Kernel) Option {
	return func(w *Workspace) {
		if k != nil {
			w.kernel = k
		}
	}
}

// Workspace holds the latest generations. Generation and export run one
// at a time; the last committed generation is the one exported.
type Workspace struct {
	mu     sync.Mutex
	log    *zap.Logger
	kernel *Kernel
	// full is the latest generation with holes, preview the latest one
	// without. preview is dropped when a newer full generation lands.
	full    *Generation
	preview *Generation
}

// NewWorkspace returns an empty workspace.
func NewWorkspace(opts ...Option) *Workspace {
	w := &Workspace{log: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	if w.kernel == nil {
		w.kernel = NewKernel()
	}
	return w
}

// Generate builds every part for p and makes the result current. With
// skipHoles the rail is left undrilled for a fast preview that export
// never uses. On failure the previous generation stays current.
func (w *Workspace) Generate(ctx context.Context, p Parameters, skipHoles bool) (*Generation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	start := time.Now()
	g, err := generate(ctx, p, skipHoles, w.kernel)
	if err != nil {
		lvl := zap.ErrorLevel
		if errors.Is(err, context.Canceled) {
			lvl = zap.DebugLevel
		}
		w.log.Log(lvl, "generation failed", zap.Error(err), zap.Bool("preview", skipHoles))
		return nil, err
	}
	w.log.Info("generated",
		zap.Stringer("id", g.ID),
		zap.Bool("preview", skipHoles),
		zap.Bool("angled", p.Angled),
		zap.Int("holes", len(g.Holes)),
		zap.Int("railTriangles", len(g.Rail.Triangles)),
		zap.Int("coverTriangles", len(g.Cover.Triangles)),
		zap.Duration("took", time.Since(start)),
	)
	if w.preview != nil {
		w.preview.Release()
		w.preview = nil
	}
	if skipHoles {
		w.preview = g
		return g, nil
	}
	if w.full != nil {
		w.full.Release()
	}
	w.full = g
	return g, nil
}

// Current returns the newest generation, preview or not, or nil.
func (w *Workspace) Current() *Generation {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.preview != nil {
		return w.preview
	}
	return w.full
}

// Export writes the role's part of the last full generation as binary STL
// laid out for printing and returns the bytes written. It writes nothing
// and returns 0, nil when no full generation exists.
func (w *Workspace) Export(wr io.Writer, role Role) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.full == nil {
		w.log.Debug("export skipped, nothing generated", zap.Stringer("role", role))
		return 0, nil
	}
	m := w.full.Mesh(role)
	if m == nil || len(m.Triangles) == 0 {
		return 0, nil
	}
	n, stats, err := exportMesh(wr, m, w.full.PrintTransform(role))
	if err != nil {
		w.log.Error("export failed", zap.Stringer("role", role), zap.Error(err))
		return n, err
	}
	w.log.Debug("exported",
		zap.Stringer("role", role),
		zap.Stringer("id", w.full.ID),
		zap.Int("bytes", n),
		zap.Int("flipped", stats.Flipped),
	)
	return n, nil
}

// Close releases every generation.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, g := range []*Generation{w.full, w.preview} {
		if g != nil {
			g.Release()
		}
	}
	w.full, w.preview = nil, nil
}

// ExportMesh writes a copy of m with World baked in and then bed applied as
// binary STL. Stitched meshes have their winding repaired first. m is not
// modified.
func ExportMesh(w io.Writer, m *solid.Mesh, bed d3.Transform) (int, error) {
	n, _, err := exportMesh(w, m, bed)
	return n, err
}

func exportMesh(w io.Writer, m *solid.Mesh, bed d3.Transform) (int, repair.Stats, error) {
	c := m.Clone()
	c.Bake()
	c.Apply(bed)
	var stats repair.Stats
	if c.Mode == solid.Stitched {
		stats = repair.Repair(c)
	}
	n, err := render.WriteSTL(w, c.TriangleSoup())
	return n, stats, err
}
